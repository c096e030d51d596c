package bookingui

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"booking-server/models"
	"booking-server/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultDebounce      = 300 * time.Millisecond
	DefaultAlertDuration = 8 * time.Second
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithDebounce sets the quiet period before a date or guest change fetches.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) { o.debounce = d }
}

// WithAlertDuration sets how long an error alert stays visible.
func WithAlertDuration(d time.Duration) Option {
	return func(o *Orchestrator) { o.alertDuration = d }
}

// WithClock replaces the source of "today".
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator owns the availability fetch cycle for one booking page. At
// most one fetch is in flight; starting another cancels it, and a cancelled
// or superseded fetch never touches the store.
type Orchestrator struct {
	store   *Store
	cfg     *models.BootstrapConfig
	fetcher Fetcher
	logger  *zap.Logger

	debounce      time.Duration
	alertDuration time.Duration
	now           func() time.Time

	ctx         context.Context
	stop        context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	mu            sync.Mutex
	timer         *time.Timer
	cancelFetch   context.CancelFunc
	seq           uint64
	lastSignature string
	observed      string
	pending       string
}

// NewOrchestrator wires an orchestrator to the store. Date and guest count
// changes made through the store schedule a debounced fetch.
func NewOrchestrator(store *Store, cfg *models.BootstrapConfig, fetcher Fetcher, logger *zap.Logger, opts ...Option) *Orchestrator {
	ctx, stop := context.WithCancel(context.Background())
	o := &Orchestrator{
		store:         store,
		cfg:           cfg,
		fetcher:       fetcher,
		logger:        logger,
		debounce:      DefaultDebounce,
		alertDuration: DefaultAlertDuration,
		now:           time.Now,
		ctx:           ctx,
		stop:          stop,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.observed = Signature(store.Snapshot())
	o.unsubscribe = store.Subscribe(o.onChange)
	return o
}

// Signature identifies the inputs that decide a fetch.
func Signature(s State) string {
	data, _ := json.Marshal(struct {
		SelectedDate string         `json:"selectedDate"`
		GuestCounts  map[string]int `json:"guestCounts"`
	}{s.SelectedDate, s.GuestCounts})
	return string(data)
}

// Load runs the initial fetch and waits for it.
func (o *Orchestrator) Load(ctx context.Context) error {
	run, ok := o.begin(true)
	if !ok {
		return nil
	}
	stopAfter := context.AfterFunc(ctx, run.cancel)
	defer stopAfter()
	return o.execute(run)
}

// SelectDate changes the selected date and follows it with the visible month.
func (o *Orchestrator) SelectDate(date string) {
	normalized, ok := util.NormalizeDate(date)
	if !ok {
		return
	}
	o.store.Dispatch(func(s *State) {
		s.SelectedDate = normalized
		s.VisibleMonth = normalized[:7]
	})
	o.retry()
}

// SetGuestCount updates one guest type count. Negative counts become zero.
func (o *Orchestrator) SetGuestCount(guestTypeID string, count int) {
	if count < 0 {
		count = 0
	}
	o.store.Dispatch(func(s *State) {
		if s.GuestCounts == nil {
			s.GuestCounts = map[string]int{}
		}
		s.GuestCounts[guestTypeID] = count
	})
	o.retry()
}

// ShowMonth pages the calendar and fetches at once, without debounce.
func (o *Orchestrator) ShowMonth(month string) {
	if _, err := util.ParseMonth(month); err != nil {
		return
	}
	o.store.Dispatch(func(s *State) { s.VisibleMonth = month })
	if run, ok := o.begin(true); ok {
		o.launch(run)
	}
}

// Wait blocks until background fetches started so far have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close stops pending timers, cancels the in-flight fetch and detaches from
// the store.
func (o *Orchestrator) Close() {
	o.unsubscribe()
	o.mu.Lock()
	if o.timer != nil {
		o.timer.Stop()
	}
	o.mu.Unlock()
	o.stop()
	o.wg.Wait()
}

func (o *Orchestrator) onChange(s State) {
	sig := Signature(s)
	o.mu.Lock()
	defer o.mu.Unlock()
	// loading flags, alerts and results do not change the inputs
	if sig == o.observed {
		return
	}
	o.observed = sig
	o.schedule(sig)
}

// retry schedules a fetch for the current inputs when they are neither
// loaded nor pending, so re-picking the same date after a failed or
// cancelled fetch loads it again.
func (o *Orchestrator) retry() {
	sig := Signature(o.store.Snapshot())
	o.mu.Lock()
	defer o.mu.Unlock()
	o.schedule(sig)
}

// schedule starts the debounce timer for sig. o.mu must be held.
func (o *Orchestrator) schedule(sig string) {
	if o.ctx.Err() != nil || sig == o.lastSignature || sig == o.pending {
		return
	}
	o.pending = sig
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.debounce, func() {
		o.mu.Lock()
		o.pending = ""
		o.mu.Unlock()
		if run, ok := o.begin(false); ok {
			o.launch(run)
		}
	})
}

type fetchRun struct {
	ctx       context.Context
	cancel    context.CancelFunc
	seq       uint64
	signature string
	request   AvailabilityRequest
}

// begin claims the fetch slot. Unless force is set, an unchanged signature
// is a no-op.
func (o *Orchestrator) begin(force bool) (*fetchRun, bool) {
	snap := o.store.Snapshot()
	sig := Signature(snap)

	o.mu.Lock()
	if o.ctx.Err() != nil || (!force && sig == o.lastSignature) {
		o.mu.Unlock()
		return nil, false
	}
	o.lastSignature = sig
	if o.cancelFetch != nil {
		o.cancelFetch()
	}
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancelFetch = cancel
	o.seq++
	run := &fetchRun{ctx: ctx, cancel: cancel, seq: o.seq, signature: sig, request: o.request(snap)}
	o.mu.Unlock()

	o.store.Dispatch(func(s *State) { s.LoadingAvailability = true })
	return run, true
}

func (o *Orchestrator) launch(run *fetchRun) {
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_ = o.execute(run)
	}()
}

func (o *Orchestrator) request(s State) AvailabilityRequest {
	month := s.VisibleMonth
	if month == "" && len(s.SelectedDate) >= 7 {
		month = s.SelectedDate[:7]
	}
	req := AvailabilityRequest{
		Date:        s.SelectedDate,
		Month:       month,
		GuestCounts: s.GuestCounts,
	}
	if o.cfg != nil {
		req.Supplier = o.cfg.Supplier
		req.Activity = o.cfg.Activity
		req.ActivityIDs = o.cfg.ActivityIDs
	}
	return req
}

func (o *Orchestrator) current(seq uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return seq == o.seq
}

func (o *Orchestrator) execute(run *fetchRun) error {
	defer run.cancel()
	resp, err := o.fetcher.FetchAvailability(run.ctx, run.request)

	if run.ctx.Err() != nil || errors.Is(err, context.Canceled) || !o.current(run.seq) {
		o.logger.Debug("[Orchestrator] fetch aborted", zap.Uint64("seq", run.seq))
		o.abandon(run)
		return context.Canceled
	}
	if err != nil {
		o.fail(run, err)
		return err
	}
	o.commit(run, resp)
	return nil
}

// forget clears the memo of run's inputs unless a newer fetch has claimed it.
func (o *Orchestrator) forget(run *fetchRun) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if run.seq != o.seq {
		return false
	}
	if o.lastSignature == run.signature {
		o.lastSignature = ""
	}
	return true
}

// abandon undoes the loading state of a cancelled fetch that nothing replaced.
// Data already on screen is left as it is.
func (o *Orchestrator) abandon(run *fetchRun) {
	if !o.forget(run) {
		return
	}
	o.store.Dispatch(func(s *State) {
		if o.current(run.seq) {
			s.LoadingAvailability = false
		}
	})
}

func (o *Orchestrator) fail(run *fetchRun, err error) {
	o.logger.Warn("[Orchestrator] availability fetch failed", zap.Error(err))
	o.forget(run)

	alert := &Alert{
		ID:      uuid.New().String(),
		Level:   "error",
		Message: "We could not load availability. Please try again.",
	}
	o.store.Dispatch(func(s *State) {
		if !o.current(run.seq) {
			return
		}
		s.LoadingAvailability = false
		s.Alert = alert
	})
	time.AfterFunc(o.alertDuration, func() {
		o.store.Dispatch(func(s *State) {
			if s.Alert != nil && s.Alert.ID == alert.ID {
				s.Alert = nil
			}
		})
	})
}

func (o *Orchestrator) commit(run *fetchRun, resp *AvailabilityResponse) {
	today := util.Today(o.now()).Format(util.DateLayout)
	o.store.Dispatch(func(s *State) {
		if !o.current(run.seq) || Signature(*s) != run.signature {
			return
		}
		s.CalendarDays = resp.Calendar
		s.AvailabilityMetadata = resp.Metadata
		s.Timeslots = DeriveTimeslots(o.cfg, s.SelectedDate, resp.Timeslots, resp.Metadata)
		s.SelectedTimeslotID = SelectTimeslot(s.Timeslots, s.SelectedTimeslotID)
		s.LoadingAvailability = false

		if next, ok := advanceTarget(*s, today); ok {
			o.logger.Info("[Orchestrator] advancing to first available date",
				zap.String("from", s.SelectedDate), zap.String("to", next))
			s.SelectedDate = next
			s.VisibleMonth = next[:7]
			s.Timeslots = []models.Timeslot{}
			s.SelectedTimeslotID = ""
		}
	})
}

// advanceTarget applies the end-of-month rule: a selected date that is today,
// the last day of its month and not bookable jumps to firstAvailableDate.
func advanceTarget(s State, today string) (string, bool) {
	raw, _ := s.AvailabilityMetadata["firstAvailableDate"].(string)
	next, ok := util.NormalizeDate(raw)
	if !ok || next == s.SelectedDate || s.SelectedDate != today {
		return "", false
	}
	selected, err := util.ParseDate(s.SelectedDate)
	if err != nil || !util.IsLastDayOfMonth(selected) {
		return "", false
	}
	for _, day := range s.CalendarDays {
		if day.Date == s.SelectedDate && day.Status.Bookable() {
			return "", false
		}
	}
	return next, true
}
