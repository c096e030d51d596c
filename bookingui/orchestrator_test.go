package bookingui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"booking-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingFetcher records requests and answers through respond.
type recordingFetcher struct {
	mu       sync.Mutex
	requests []AvailabilityRequest
	respond  func(ctx context.Context, call int, req AvailabilityRequest) (*AvailabilityResponse, error)
}

func (f *recordingFetcher) FetchAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	call := len(f.requests)
	f.mu.Unlock()
	return f.respond(ctx, call, req)
}

func (f *recordingFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *recordingFetcher) last() AvailabilityRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func staticResponse(resp *AvailabilityResponse) func(context.Context, int, AvailabilityRequest) (*AvailabilityResponse, error) {
	return func(context.Context, int, AvailabilityRequest) (*AvailabilityResponse, error) {
		return resp, nil
	}
}

func testBootstrap() *models.BootstrapConfig {
	return &models.BootstrapConfig{
		Supplier:      "reef-co",
		Activity:      "snorkel",
		ActivityIDs:   []string{"369", "555"},
		ActivityOrder: []string{"555", "369"},
	}
}

func clockAt(year int, month time.Month, day int) Option {
	return WithClock(func() time.Time { return time.Date(year, month, day, 9, 0, 0, 0, time.UTC) })
}

func TestOrchestrator_LoadCommitsDerivedState(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{
		Calendar: []models.AvailabilityDay{{Date: "2024-08-10", Status: models.StatusAvailable}},
		Metadata: decode(t, `{"firstAvailableDate": "2024-08-10", "extended": {"2024-08-10": {"activityIds": ["369", "555"]}}}`),
	})}
	store := NewStore(State{SelectedDate: "2024-08-10", GuestCounts: map[string]int{"adult": 2}})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour), clockAt(2024, 8, 5))
	defer o.Close()

	require.NoError(t, o.Load(context.Background()))

	req := fetcher.last()
	assert.Equal(t, "reef-co", req.Supplier)
	assert.Equal(t, "2024-08-10", req.Date)
	assert.Equal(t, "2024-08", req.Month)
	assert.Equal(t, []string{"369", "555"}, req.ActivityIDs)
	assert.Equal(t, 2, req.GuestCounts["adult"])

	s := store.Snapshot()
	assert.False(t, s.LoadingAvailability)
	assert.Len(t, s.CalendarDays, 1)
	assert.Equal(t, []string{"555", "369"}, slotIDs(s.Timeslots))
	assert.Equal(t, "555", s.SelectedTimeslotID)
	assert.Nil(t, s.Alert)
}

func TestOrchestrator_AdvancesPastSoldOutMonthEnd(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{
		Calendar: []models.AvailabilityDay{{Date: "2024-08-31", Status: models.StatusSoldOut}},
		Timeslots: []models.Timeslot{
			{ID: "369", Label: "7:30 AM", Available: models.IntPtr(0)},
		},
		Metadata: decode(t, `{"firstAvailableDate": "2024-09-03"}`),
	})}
	store := NewStore(State{SelectedDate: "2024-08-31", VisibleMonth: "2024-08", SelectedTimeslotID: "369"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour), clockAt(2024, 8, 31))
	defer o.Close()

	require.NoError(t, o.Load(context.Background()))

	s := store.Snapshot()
	assert.Equal(t, "2024-09-03", s.SelectedDate)
	assert.Equal(t, "2024-09", s.VisibleMonth)
	assert.Empty(t, s.Timeslots)
	assert.Equal(t, "", s.SelectedTimeslotID)
}

func TestOrchestrator_NoAdvanceWhenNotToday(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{
		Calendar: []models.AvailabilityDay{{Date: "2024-08-31", Status: models.StatusSoldOut}},
		Metadata: decode(t, `{"firstAvailableDate": "2024-09-03"}`),
	})}
	store := NewStore(State{SelectedDate: "2024-08-31"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour), clockAt(2024, 8, 20))
	defer o.Close()

	require.NoError(t, o.Load(context.Background()))
	assert.Equal(t, "2024-08-31", store.Snapshot().SelectedDate)
}

func TestOrchestrator_DebouncesInputChanges(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{})}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(30*time.Millisecond))
	defer o.Close()

	o.SetGuestCount("adult", 1)
	o.SetGuestCount("adult", 2)
	o.SelectDate("08/12/2024")
	o.SetGuestCount("child", -3)

	assert.Eventually(t, func() bool { return fetcher.calls() == 1 }, time.Second, 5*time.Millisecond)
	o.Wait()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, fetcher.calls())

	req := fetcher.last()
	assert.Equal(t, "2024-08-12", req.Date)
	assert.Equal(t, map[string]int{"adult": 2, "child": 0}, req.GuestCounts)
	assert.Equal(t, "2024-08", store.Snapshot().VisibleMonth)
}

func TestOrchestrator_UnchangedInputsDoNotRefetch(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{})}
	store := NewStore(State{SelectedDate: "2024-08-10", GuestCounts: map[string]int{"adult": 2}})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(10*time.Millisecond))
	defer o.Close()

	require.NoError(t, o.Load(context.Background()))

	o.SetGuestCount("adult", 3)
	o.SetGuestCount("adult", 2)
	o.SelectDate("2024-08-10")
	time.Sleep(50 * time.Millisecond)
	o.Wait()

	assert.Equal(t, 1, fetcher.calls())
}

func TestOrchestrator_ShowMonthFetchesImmediately(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{})}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour))
	defer o.Close()

	require.NoError(t, o.Load(context.Background()))
	o.ShowMonth("2024-09")
	o.Wait()

	assert.Equal(t, 2, fetcher.calls())
	assert.Equal(t, "2024-09", fetcher.last().Month)

	o.ShowMonth("September")
	o.Wait()
	assert.Equal(t, 2, fetcher.calls())
}

func TestOrchestrator_SupersededFetchIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	stale := &AvailabilityResponse{Calendar: []models.AvailabilityDay{{Date: "2024-08-01", Status: models.StatusSoldOut}}}
	fresh := &AvailabilityResponse{Calendar: []models.AvailabilityDay{{Date: "2024-09-01", Status: models.StatusAvailable}}}

	fetcher := &recordingFetcher{respond: func(_ context.Context, call int, _ AvailabilityRequest) (*AvailabilityResponse, error) {
		if call == 1 {
			<-release
			return stale, nil
		}
		return fresh, nil
	}}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour))
	defer o.Close()

	o.ShowMonth("2024-08")
	assert.Eventually(t, func() bool { return fetcher.calls() == 1 }, time.Second, time.Millisecond)
	o.ShowMonth("2024-09")
	assert.Eventually(t, func() bool { return fetcher.calls() == 2 }, time.Second, time.Millisecond)
	close(release)
	o.Wait()

	s := store.Snapshot()
	require.Len(t, s.CalendarDays, 1)
	assert.Equal(t, "2024-09-01", s.CalendarDays[0].Date)
	assert.Nil(t, s.Alert)
}

func TestOrchestrator_CancelledLoadLeavesStateAlone(t *testing.T) {
	fetcher := &recordingFetcher{respond: func(ctx context.Context, _ int, _ AvailabilityRequest) (*AvailabilityResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	initial := []models.AvailabilityDay{{Date: "2024-08-10", Status: models.StatusAvailable}}
	store := NewStore(State{SelectedDate: "2024-08-10", CalendarDays: initial})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour))
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := o.Load(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	s := store.Snapshot()
	assert.Equal(t, initial, s.CalendarDays)
	assert.Nil(t, s.Alert)
}

func TestOrchestrator_CancelledLoadCanBeRetried(t *testing.T) {
	fetcher := &recordingFetcher{respond: func(ctx context.Context, call int, _ AvailabilityRequest) (*AvailabilityResponse, error) {
		if call == 1 {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &AvailabilityResponse{
			Calendar: []models.AvailabilityDay{{Date: "2024-08-10", Status: models.StatusAvailable}},
		}, nil
	}}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(10*time.Millisecond))
	defer o.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, o.Load(ctx), context.Canceled)
	assert.False(t, store.Snapshot().LoadingAvailability)

	o.SelectDate("2024-08-10")
	assert.Eventually(t, func() bool { return fetcher.calls() == 2 }, time.Second, 5*time.Millisecond)
	o.Wait()

	s := store.Snapshot()
	assert.False(t, s.LoadingAvailability)
	assert.Len(t, s.CalendarDays, 1)
}

func TestOrchestrator_SupersededFetchKeepsLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &recordingFetcher{respond: func(ctx context.Context, call int, _ AvailabilityRequest) (*AvailabilityResponse, error) {
		if call == 1 {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		<-release
		return &AvailabilityResponse{}, nil
	}}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(time.Hour))
	defer o.Close()

	o.ShowMonth("2024-08")
	<-started
	o.ShowMonth("2024-09")
	assert.Eventually(t, func() bool { return fetcher.calls() == 2 }, time.Second, time.Millisecond)

	// the replaced fetch must not clear the flag owned by its successor
	time.Sleep(20 * time.Millisecond)
	assert.True(t, store.Snapshot().LoadingAvailability)

	close(release)
	o.Wait()
	assert.False(t, store.Snapshot().LoadingAvailability)
}

func TestOrchestrator_FailureRaisesAlertAndKeepsData(t *testing.T) {
	boom := errors.New("bad gateway")
	fetcher := &recordingFetcher{respond: func(context.Context, int, AvailabilityRequest) (*AvailabilityResponse, error) {
		return nil, boom
	}}
	initial := []models.AvailabilityDay{{Date: "2024-08-10", Status: models.StatusAvailable}}
	slots := []models.Timeslot{{ID: "369", Label: "7:30 AM"}}
	store := NewStore(State{SelectedDate: "2024-08-10", CalendarDays: initial, Timeslots: slots})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(),
		WithDebounce(10*time.Millisecond), WithAlertDuration(30*time.Millisecond))
	defer o.Close()

	err := o.Load(context.Background())
	assert.ErrorIs(t, err, boom)

	s := store.Snapshot()
	require.NotNil(t, s.Alert)
	assert.Equal(t, "error", s.Alert.Level)
	assert.NotEmpty(t, s.Alert.ID)
	assert.False(t, s.LoadingAvailability)
	assert.Equal(t, initial, s.CalendarDays)
	assert.Equal(t, slots, s.Timeslots)

	assert.Eventually(t, func() bool { return store.Snapshot().Alert == nil }, time.Second, 5*time.Millisecond)
	o.Wait()
	assert.Equal(t, 1, fetcher.calls(), "alerts alone never trigger a fetch")
}

func TestOrchestrator_CloseStopsPendingFetch(t *testing.T) {
	fetcher := &recordingFetcher{respond: staticResponse(&AvailabilityResponse{})}
	store := NewStore(State{SelectedDate: "2024-08-10"})
	o := NewOrchestrator(store, testBootstrap(), fetcher, zap.NewNop(), WithDebounce(20*time.Millisecond))

	o.SelectDate("2024-08-11")
	o.Close()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, fetcher.calls())
}

func TestSignature(t *testing.T) {
	a := Signature(State{SelectedDate: "2024-08-10", GuestCounts: map[string]int{"adult": 2, "child": 1}})
	b := Signature(State{SelectedDate: "2024-08-10", GuestCounts: map[string]int{"child": 1, "adult": 2}, LoadingAvailability: true})
	c := Signature(State{SelectedDate: "2024-08-11", GuestCounts: map[string]int{"adult": 2, "child": 1}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
