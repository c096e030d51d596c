package services

import (
	"context"
	"strconv"
	"time"

	"booking-server/models"
	"booking-server/util"

	"go.uber.org/zap"
)

// AvailabilityQuery is the decoded form of GET /api/availability.
type AvailabilityQuery struct {
	Supplier    string
	Activity    string
	Date        string
	Month       string
	ActivityIDs []any
	GuestCounts map[string]int
	Debug       bool
	SkipCache   bool
}

// AvailabilityService composes the month calendar with seat probes for the
// selected date.
type AvailabilityService struct {
	registry  *SupplierRegistry
	calendars *CalendarService
	prober    *SeatProbeService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(registry *SupplierRegistry, calendars *CalendarService, prober *SeatProbeService, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		registry:  registry,
		calendars: calendars,
		prober:    prober,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source used to pick the calendar start.
func (s *AvailabilityService) SetClock(now func() time.Time) {
	s.now = now
}

// CalendarStart picks the first calendar day for a query: the first of the
// requested month (or of the selected date's month, or of the current month),
// moved up to today when that month is the current one.
func CalendarStart(month, date string, now time.Time) time.Time {
	today := util.Today(now)
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	if m, err := util.ParseMonth(month); err == nil {
		start = m
	} else if d, err := util.ParseDate(date); err == nil {
		start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	if start.Before(today) && start.Year() == today.Year() && start.Month() == today.Month() {
		start = today
	}
	return start
}

// GetAvailability returns the calendar for the requested month. When a date
// and activity ids are given the probe results are folded into the timeslots.
// A failed probe is reported in metadata.error and does not fail the request.
func (s *AvailabilityService) GetAvailability(ctx context.Context, q AvailabilityQuery) (*models.CalendarPayload, error) {
	start := CalendarStart(q.Month, q.Date, s.now())
	payload, err := s.calendars.FetchCalendar(ctx, q.Supplier, q.Activity, start.Format(util.DateLayout), CalendarOptions{
		Debug:     q.Debug,
		SkipCache: q.SkipCache,
	})
	if err != nil {
		return nil, err
	}

	if q.Date == "" || len(q.ActivityIDs) == 0 {
		return payload, nil
	}

	requests := make([]models.ProbeRequest, 0, len(q.ActivityIDs))
	for _, id := range q.ActivityIDs {
		requests = append(requests, models.ProbeRequest{ActivityID: id, Date: q.Date})
	}
	probe, err := s.prober.ProbeTimeslots(ctx, q.Supplier, q.Activity, requests, q.GuestCounts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("[AvailabilityService] seat probe failed, returning calendar only",
			zap.String("supplier", q.Supplier),
			zap.String("date", q.Date),
			zap.Error(err))
		if payload.Metadata.Error == "" {
			payload.Metadata.Error = err.Error()
		}
		return payload, nil
	}

	applyProbe(payload, probe)
	return payload, nil
}

// applyProbe copies probed seat counts onto the matching timeslots.
func applyProbe(payload *models.CalendarPayload, probe *models.SeatProbeResponse) {
	seats := make(map[string]int, len(probe.Messages))
	for _, msg := range probe.Messages {
		id, ok := ParseTimeslotID(msg.ActivityID)
		if !ok {
			continue
		}
		n := 0
		if msg.Tier != models.TierUnavailable && msg.Seats != nil {
			n = *msg.Seats
		}
		seats[strconv.FormatInt(id, 10)] = n
	}
	for i := range payload.Timeslots {
		if n, ok := seats[payload.Timeslots[i].ID]; ok {
			payload.Timeslots[i].Available = models.IntPtr(n)
		}
	}
	payload.Metadata.SeatProbe = probe
}

// Probe runs the seat prober directly.
func (s *AvailabilityService) Probe(ctx context.Context, supplier, activity string, requests []models.ProbeRequest, guestCounts map[string]int) (*models.SeatProbeResponse, error) {
	return s.prober.ProbeTimeslots(ctx, supplier, activity, requests, guestCounts)
}

// Bootstrap builds the page configuration for a supplier activity.
func (s *AvailabilityService) Bootstrap(supplierSlug, activitySlug string) (*models.BootstrapConfig, error) {
	supplier, activity, err := s.registry.Resolve(supplierSlug, activitySlug)
	if err != nil {
		return nil, err
	}
	cfg := &models.BootstrapConfig{
		Supplier:        supplier.Slug,
		SupplierName:    supplier.Name,
		Activity:        activity.Slug,
		ActivityName:    activity.Name,
		Today:           util.Today(s.now()).Format(util.DateLayout),
		GuestTypes:      activity.GuestTypes,
		ActivityIDs:     formatIDs(activity.TimeslotIDs),
		ActivityOrder:   formatIDs(activity.DisplayOrder),
		DepartureLabels: activity.DepartureLabels,
		ActivityNames:   activity.ActivityNames,
	}
	if cfg.GuestTypes == nil {
		cfg.GuestTypes = []models.GuestType{}
	}
	return cfg, nil
}

func formatIDs(ids []int64) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, strconv.FormatInt(id, 10))
	}
	return out
}
