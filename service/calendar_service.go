package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"booking-server/api/ponorez"
	"booking-server/dao/redis"
	"booking-server/models"
	"booking-server/util"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// CalendarSettings tunes calendar building.
type CalendarSettings struct {
	FallbackDays         int
	LimitedSeatThreshold int
}

// CalendarOptions are per-request switches.
type CalendarOptions struct {
	// Debug surfaces gateway faults instead of answering with the fallback calendar.
	Debug bool
	// SkipCache forces a gateway round-trip; the result is still cached.
	SkipCache bool
}

// keys of a date row that describe the day itself rather than its activities,
// lower-cased
var dayRowKeys = map[string]bool{"date": true, "day": true, "activitydate": true, "status": true}

// CalendarService builds month calendars for a supplier activity.
type CalendarService struct {
	registry *SupplierRegistry
	factory  ponorez.Factory
	dao      *redis.RedisAvailabilityDAO
	logger   *zap.Logger
	settings CalendarSettings
	now      func() time.Time
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(
	registry *SupplierRegistry,
	factory ponorez.Factory,
	dao *redis.RedisAvailabilityDAO,
	logger *zap.Logger,
	settings CalendarSettings,
) *CalendarService {
	if settings.FallbackDays <= 0 {
		settings.FallbackDays = 14
	}
	return &CalendarService{
		registry: registry,
		factory:  factory,
		dao:      dao,
		logger:   logger,
		settings: settings,
		now:      time.Now,
	}
}

// SetClock replaces the time source, used for "today".
func (s *CalendarService) SetClock(now func() time.Time) {
	s.now = now
}

// FetchCalendar returns the calendar, timeslots and metadata starting at
// startDate. Cached payloads are returned without a gateway call. Gateway
// failures yield an all-unknown fallback calendar unless opts.Debug is set.
func (s *CalendarService) FetchCalendar(ctx context.Context, supplierSlug, activitySlug, startDate string, opts CalendarOptions) (*models.CalendarPayload, error) {
	supplier, activity, err := s.registry.Resolve(supplierSlug, activitySlug)
	if err != nil {
		return nil, err
	}

	start, err := util.ParseDate(startDate)
	if err != nil {
		start = util.Today(s.now())
	}
	startKey := start.Format(util.DateLayout)
	log := s.logger.With(
		zap.String("supplier", supplier.Slug),
		zap.String("activity", activity.Slug),
		zap.String("date", startKey))

	if !opts.SkipCache {
		cached, err := s.dao.GetCalendar(supplier.Slug, activity.Slug, startKey)
		if err != nil {
			log.Warn("[CalendarService] cache read failed, treating as miss", zap.Error(err))
		}
		if cached != nil {
			log.Debug("[CalendarService] serving cached calendar",
				zap.String("stored", humanize.Time(cached.Metadata.GeneratedAt)))
			cached.Metadata.Source = models.SourceCache
			return cached, nil
		}
	}

	payload, err := s.buildFromGateway(ctx, supplier, activity, start)
	if err != nil {
		if opts.Debug {
			return nil, fmt.Errorf("calendar %s/%s: %w", supplier.Slug, activity.Slug, err)
		}
		log.Warn("[CalendarService] gateway failed, answering with fallback calendar", zap.Error(err))
		return s.fallbackCalendar(activity, start, err), nil
	}

	if err := s.dao.SetCalendar(supplier.Slug, activity.Slug, startKey, payload); err != nil {
		log.Warn("[CalendarService] failed to cache calendar", zap.Error(err))
	}
	log.Info("[CalendarService] calendar built",
		zap.Int("days", len(payload.Calendar)),
		zap.Int("timeslots", len(payload.Timeslots)),
		zap.String("first_available", payload.Metadata.FirstAvailableDate))
	return payload, nil
}

func (s *CalendarService) buildFromGateway(ctx context.Context, supplier *models.Supplier, activity *models.Activity, start time.Time) (*models.CalendarPayload, error) {
	client, err := s.factory.NewReservationAPI(supplier)
	if err != nil {
		return nil, err
	}

	end := start.AddDate(0, 1, -1)
	rows, err := client.GetActivityAvailableDates(ctx, supplier.SupplierID, activity.ActivityID, start, end)
	if err != nil {
		return nil, err
	}

	calendar := models.NewAvailabilityCalendar()
	extended := make(map[string]map[string]any)
	for _, row := range rows {
		date, ok := util.NormalizeDate(row.String("date", "day", "activityDate"))
		if !ok {
			s.logger.Debug("[CalendarService] skipping row without a date", zap.Any("row", row))
			continue
		}
		calendar.AddDay(date, s.classifyDay(row))

		entry := make(map[string]any)
		for k, v := range row {
			if !dayRowKeys[strings.ToLower(k)] {
				entry[k] = v
			}
		}
		if len(entry) > 0 {
			extended[date] = entry
		}
	}

	return &models.CalendarPayload{
		Calendar:  calendar.Days(),
		Timeslots: s.buildTimeslots(ctx, client, supplier, activity),
		Metadata: models.CalendarMetadata{
			Source:             models.SourcePonorez,
			StartDate:          start.Format(util.DateLayout),
			FirstAvailableDate: calendar.FirstBookableDate(),
			GeneratedAt:        s.now().UTC(),
			Extended:           extended,
		},
	}, nil
}

// classifyDay prefers an explicit status, then a seat count, then assumes available.
func (s *CalendarService) classifyDay(row ponorez.Record) models.AvailabilityStatus {
	if raw := row.String("status", "availability", "dayStatus"); raw != "" {
		return models.ParseAvailabilityStatus(raw)
	}
	if seats, ok := row.Int("seats", "availableSeats", "seatsAvailable"); ok {
		switch {
		case seats <= 0:
			return models.StatusSoldOut
		case seats <= s.settings.LimitedSeatThreshold:
			return models.StatusLimited
		default:
			return models.StatusAvailable
		}
	}
	if open, ok := row.Bool("available", "isAvailable"); ok && !open {
		return models.StatusSoldOut
	}
	return models.StatusAvailable
}

// buildTimeslots lists the activity's configured departures, labelled from the
// supplier catalog when it answers.
func (s *CalendarService) buildTimeslots(ctx context.Context, client ponorez.ReservationAPI, supplier *models.Supplier, activity *models.Activity) []models.Timeslot {
	catalog := make(map[string]ponorez.Record)
	records, err := client.GetActivities(ctx, supplier.SupplierID)
	if err != nil {
		s.logger.Warn("[CalendarService] activity catalog unavailable, using configured labels",
			zap.String("supplier", supplier.Slug), zap.Error(err))
	}
	for _, rec := range records {
		if id := rec.String("id", "activityId"); id != "" {
			catalog[id] = rec
		}
	}

	slots := make([]models.Timeslot, 0, len(activity.TimeslotIDs))
	for _, id := range activity.TimeslotIDs {
		slot := configuredTimeslot(activity, id)
		if rec, ok := catalog[slot.ID]; ok {
			if label := rec.String("times", "time", "departureTime", "name"); label != "" {
				slot.Label = label
			}
			addDetail(slot.Details, "checkIn", rec.String("checkinTime", "checkInTime", "checkIn", "checkin"))
			addDetail(slot.Details, "departure", rec.String("times", "departureTime", "time"))
			addDetail(slot.Details, "name", rec.String("name"))
		}
		slots = append(slots, slot)
	}
	return slots
}

func configuredTimeslot(activity *models.Activity, id int64) models.Timeslot {
	key := strconv.FormatInt(id, 10)
	label := activity.DepartureLabels[key]
	if label == "" {
		label = "Departure " + key
	}
	return models.Timeslot{ID: key, Label: label, Details: map[string]string{}}
}

func addDetail(details map[string]string, key, value string) {
	if value != "" {
		details[key] = value
	}
}

func (s *CalendarService) fallbackCalendar(activity *models.Activity, start time.Time, cause error) *models.CalendarPayload {
	calendar := models.NewAvailabilityCalendar()
	for i := 0; i < s.settings.FallbackDays; i++ {
		calendar.AddDay(start.AddDate(0, 0, i).Format(util.DateLayout), models.StatusUnknown)
	}

	slots := make([]models.Timeslot, 0, len(activity.TimeslotIDs))
	for _, id := range activity.TimeslotIDs {
		slots = append(slots, configuredTimeslot(activity, id))
	}

	return &models.CalendarPayload{
		Calendar:  calendar.Days(),
		Timeslots: slots,
		Metadata: models.CalendarMetadata{
			Source:      models.SourceFallback,
			Fallback:    true,
			Error:       cause.Error(),
			StartDate:   start.Format(util.DateLayout),
			GeneratedAt: s.now().UTC(),
		},
	}
}
