package bookingui

import (
	"sync"

	"booking-server/models"
)

// Alert is a transient message shown to the guest.
type Alert struct {
	ID      string
	Level   string
	Message string
}

// State is the booking page view state. Only the orchestrator writes
// Timeslots, CalendarDays and SelectedTimeslotID.
type State struct {
	SelectedDate         string
	VisibleMonth         string
	GuestCounts          map[string]int
	Timeslots            []models.Timeslot
	SelectedTimeslotID   string
	AvailabilityMetadata map[string]any
	CalendarDays         []models.AvailabilityDay

	LoadingAvailability bool
	Alert               *Alert
}

func (s State) clone() State {
	out := s
	out.GuestCounts = make(map[string]int, len(s.GuestCounts))
	for k, v := range s.GuestCounts {
		out.GuestCounts[k] = v
	}
	out.Timeslots = append([]models.Timeslot(nil), s.Timeslots...)
	out.CalendarDays = append([]models.AvailabilityDay(nil), s.CalendarDays...)
	if s.Alert != nil {
		alert := *s.Alert
		out.Alert = &alert
	}
	return out
}

// Store holds State behind a single Dispatch entry point and fans changes
// out to subscribers.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers map[int]func(State)
	nextID      int
}

func NewStore(initial State) *Store {
	if initial.GuestCounts == nil {
		initial.GuestCounts = map[string]int{}
	}
	return &Store{state: initial, subscribers: make(map[int]func(State))}
}

// Dispatch applies update under the store lock, then notifies subscribers
// with a snapshot. Subscribers run after the lock is released and may
// dispatch again.
func (s *Store) Dispatch(update func(*State)) {
	s.mu.Lock()
	update(&s.state)
	snapshot := s.state.clone()
	subs := make([]func(State), 0, len(s.subscribers))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subscribers[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Subscribe registers fn for every later change and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}
