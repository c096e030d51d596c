package bookingui

import (
	"testing"

	"booking-server/models"

	"github.com/stretchr/testify/assert"
)

func TestStore_DispatchNotifiesSubscribers(t *testing.T) {
	store := NewStore(State{SelectedDate: "2024-08-01"})

	var seen []string
	unsubscribe := store.Subscribe(func(s State) { seen = append(seen, s.SelectedDate) })

	store.Dispatch(func(s *State) { s.SelectedDate = "2024-08-02" })
	store.Dispatch(func(s *State) { s.SelectedDate = "2024-08-03" })
	unsubscribe()
	store.Dispatch(func(s *State) { s.SelectedDate = "2024-08-04" })

	assert.Equal(t, []string{"2024-08-02", "2024-08-03"}, seen)
	assert.Equal(t, "2024-08-04", store.Snapshot().SelectedDate)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	store := NewStore(State{
		GuestCounts: map[string]int{"adult": 2},
		Timeslots:   []models.Timeslot{{ID: "369"}},
		Alert:       &Alert{ID: "a", Message: "hi"},
	})

	snap := store.Snapshot()
	snap.GuestCounts["adult"] = 9
	snap.Timeslots[0].ID = "555"
	snap.Alert.Message = "changed"

	fresh := store.Snapshot()
	assert.Equal(t, 2, fresh.GuestCounts["adult"])
	assert.Equal(t, "369", fresh.Timeslots[0].ID)
	assert.Equal(t, "hi", fresh.Alert.Message)
}

func TestStore_SubscriberMayDispatch(t *testing.T) {
	store := NewStore(State{})
	store.Subscribe(func(s State) {
		if s.SelectedDate == "2024-08-31" && !s.LoadingAvailability {
			store.Dispatch(func(s *State) { s.LoadingAvailability = true })
		}
	})

	store.Dispatch(func(s *State) { s.SelectedDate = "2024-08-31" })
	assert.True(t, store.Snapshot().LoadingAvailability)
}

func TestNewStore_InitializesGuestCounts(t *testing.T) {
	assert.NotNil(t, NewStore(State{}).Snapshot().GuestCounts)
}
