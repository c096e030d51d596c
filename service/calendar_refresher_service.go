package services

import (
	"context"
	"time"

	"booking-server/dao/redis"
	"booking-server/util"

	"go.uber.org/zap"
)

// CalendarRefresherService periodically re-fetches calendars so guest
// requests are answered from the cache.
type CalendarRefresherService struct {
	registry  *SupplierRegistry
	calendars *CalendarService
	dao       *redis.RedisAvailabilityDAO
	logger    *zap.Logger
	now       func() time.Time
}

// NewCalendarRefresherService constructs a new refresher with dependencies.
func NewCalendarRefresherService(
	registry *SupplierRegistry,
	calendars *CalendarService,
	dao *redis.RedisAvailabilityDAO,
	logger *zap.Logger,
) *CalendarRefresherService {
	return &CalendarRefresherService{
		registry:  registry,
		calendars: calendars,
		dao:       dao,
		logger:    logger,
		now:       time.Now,
	}
}

// StartPeriodicJob launches the background loop at the given interval. It
// stops when ctx is done.
func (cr *CalendarRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go cr.startPeriodicJob(ctx, interval)
}

func (cr *CalendarRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cr.logger.Info("[CalendarRefresherService] Stopping periodic calendar refresher job.")
			return
		case <-ticker.C:
			cr.logger.Info("[CalendarRefresherService] Running periodic calendar refresher job.")
			refreshed := cr.RefreshCalendars(ctx)
			cr.logger.Info("[CalendarRefresherService] RefreshCalendars completed.", zap.Int("refreshed", refreshed))
			extra, err := cr.RefreshCachedCalendars(ctx)
			if err != nil {
				continue
			}
			cr.logger.Info("[CalendarRefresherService] RefreshCachedCalendars completed.", zap.Int("refreshed", extra))
		}
	}
}

// RefreshCalendars re-fetches the current and next month for every configured
// supplier activity and returns how many calendars came back from Ponorez.
func (cr *CalendarRefresherService) RefreshCalendars(ctx context.Context) int {
	starts := cr.defaultStarts()

	refreshed := 0
	for _, supplier := range cr.registry.All() {
		for _, activity := range supplier.Activities {
			for _, start := range starts {
				if ctx.Err() != nil {
					return refreshed
				}
				if cr.refresh(ctx, supplier.Slug, activity.Slug, start) {
					refreshed++
				}
			}
		}
	}
	return refreshed
}

// defaultStarts are the calendar starts RefreshCalendars covers: today and
// the first of next month.
func (cr *CalendarRefresherService) defaultStarts() []string {
	today := util.Today(cr.now())
	nextMonth := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return []string{today.Format(util.DateLayout), nextMonth.Format(util.DateLayout)}
}

// RefreshCachedCalendars re-fetches the cached calendars RefreshCalendars does
// not cover, such as months guests paged to further ahead. Calendars starting
// before today, or for a supplier activity no longer configured, are evicted.
func (cr *CalendarRefresherService) RefreshCachedCalendars(ctx context.Context) (int, error) {
	cached, err := cr.dao.ListCachedCalendars()
	if err != nil {
		cr.logger.Error("[CalendarRefresherService] Error listing cached calendars", zap.Error(err))
		return 0, err
	}
	cr.logger.Info("[CalendarRefresherService] Found cached calendars", zap.Int("count", len(cached)))

	starts := cr.defaultStarts()
	today := starts[0]
	refreshed := 0
	for _, entry := range cached {
		if ctx.Err() != nil {
			return refreshed, ctx.Err()
		}
		supplier, activity, start := entry[0], entry[1], entry[2]

		_, _, err := cr.registry.Resolve(supplier, activity)
		switch {
		case err != nil, start < today:
			cr.evict(supplier, activity, start)
		case start == starts[0], start == starts[1]:
			// already refreshed by RefreshCalendars
		default:
			if cr.refresh(ctx, supplier, activity, start) {
				refreshed++
			}
		}
	}
	return refreshed, nil
}

func (cr *CalendarRefresherService) evict(supplier, activity, start string) {
	if err := cr.dao.DeleteCalendar(supplier, activity, start); err != nil {
		cr.logger.Warn("[CalendarRefresherService] Error evicting calendar",
			zap.String("supplier", supplier),
			zap.String("activity", activity),
			zap.String("date", start),
			zap.Error(err))
		return
	}
	cr.logger.Debug("[CalendarRefresherService] Evicted calendar",
		zap.String("supplier", supplier),
		zap.String("activity", activity),
		zap.String("date", start))
}

func (cr *CalendarRefresherService) refresh(ctx context.Context, supplier, activity, start string) bool {
	log := cr.logger.With(
		zap.String("supplier", supplier),
		zap.String("activity", activity),
		zap.String("date", start))

	payload, err := cr.calendars.FetchCalendar(ctx, supplier, activity, start, CalendarOptions{SkipCache: true})
	if err != nil {
		log.Warn("[CalendarRefresherService] FetchCalendar failed", zap.Error(err))
		return false
	}
	if payload.Metadata.Fallback {
		// keep whatever snapshot is still cached rather than one built from a fault
		log.Warn("[CalendarRefresherService] Ponorez unavailable, keeping cached snapshot",
			zap.String("error", payload.Metadata.Error))
		return false
	}
	log.Debug("[CalendarRefresherService] Calendar refreshed", zap.Int("days", len(payload.Calendar)))
	return true
}
