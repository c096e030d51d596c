package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"booking-server/api/ponorez"
	"booking-server/dao/redis"
	"booking-server/models"
	"booking-server/util"

	"go.uber.org/zap"
)

// probeOffsets are tried in order after a successful baseline check; the first
// success stops probing.
var probeOffsets = []int{3, 2, 1}

// plentyOffset is the smallest offset that counts as comfortable availability.
const plentyOffset = 2

// ProbeCache memoizes probe results for one batch, keyed by date|activityId|seats.
type ProbeCache map[string]models.SeatProbeResult

func probeCacheKey(date string, activityID int64, seats int) string {
	return fmt.Sprintf("%s|%d|%d", date, activityID, seats)
}

// SeatProbeService estimates how comfortably a departure can seat a party.
type SeatProbeService struct {
	registry *SupplierRegistry
	factory  ponorez.Factory
	dao      *redis.RedisAvailabilityDAO
	logger   *zap.Logger
}

// NewSeatProbeService constructs a SeatProbeService.
func NewSeatProbeService(registry *SupplierRegistry, factory ponorez.Factory, dao *redis.RedisAvailabilityDAO, logger *zap.Logger) *SeatProbeService {
	return &SeatProbeService{
		registry: registry,
		factory:  factory,
		dao:      dao,
		logger:   logger,
	}
}

// RequestedSeats is the party size: the sum of positive guest counts, or the
// sum of guest type minimums when nobody is selected yet. Never below 1.
func RequestedSeats(guestTypes []models.GuestType, guestCounts map[string]int) int {
	total := 0
	for _, n := range guestCounts {
		if n > 0 {
			total += n
		}
	}
	if total == 0 {
		for _, gt := range guestTypes {
			if gt.Minimum > 0 {
				total += gt.Minimum
			}
		}
	}
	if total < 1 {
		total = 1
	}
	return total
}

// ParseTimeslotID accepts a bare number, a numeric string or "timeslot-<id>".
func ParseTimeslotID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case float64:
		if v <= 0 || v >= math.MaxInt64 || v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		s := strings.TrimPrefix(strings.TrimSpace(v), "timeslot-")
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return 0, false
		}
		return id, true
	}
	return 0, false
}

func callerID(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// ProbeTimeslots classifies every valid (activity, date) request into a seat
// tier. Requests with an unknown id or an unparsable date are dropped. A
// failure to build the gateway client aborts the whole batch.
func (s *SeatProbeService) ProbeTimeslots(ctx context.Context, supplierSlug, activitySlug string, requests []models.ProbeRequest, guestCounts map[string]int) (*models.SeatProbeResponse, error) {
	supplier, activity, err := s.registry.Resolve(supplierSlug, activitySlug)
	if err != nil {
		return nil, err
	}

	seats := RequestedSeats(activity.GuestTypes, guestCounts)
	client, err := s.factory.NewReservationAPI(supplier)
	if err != nil {
		return nil, fmt.Errorf("seat probe for %s/%s: %w", supplier.Slug, activity.Slug, err)
	}

	resp := &models.SeatProbeResponse{RequestedSeats: seats, Messages: []models.SeatProbeResult{}}
	cache := make(ProbeCache)
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, ok := ParseTimeslotID(req.ActivityID)
		if !ok || !activity.HasTimeslot(id) {
			s.logger.Debug("[SeatProbeService] dropping request with unknown activity id", zap.Any("activity_id", req.ActivityID))
			continue
		}
		date, err := util.ParseDate(req.Date)
		if err != nil {
			s.logger.Debug("[SeatProbeService] dropping request with invalid date", zap.String("date", req.Date))
			continue
		}

		result := s.probe(ctx, client, cache, id, date, seats)
		result.ActivityID = callerID(req.ActivityID)
		resp.Messages = append(resp.Messages, result)
	}

	s.logger.Info("[SeatProbeService] probe batch finished",
		zap.String("supplier", supplier.Slug),
		zap.Int("requested_seats", seats),
		zap.Int("requests", len(requests)),
		zap.Int("results", len(resp.Messages)),
		zap.Int("unique", len(cache)))
	return resp, nil
}

func (s *SeatProbeService) probe(ctx context.Context, client ponorez.ReservationAPI, cache ProbeCache, activityID int64, date time.Time, seats int) models.SeatProbeResult {
	dateKey := date.Format(util.DateLayout)
	key := probeCacheKey(dateKey, activityID, seats)
	if cached, ok := cache[key]; ok {
		return cached
	}

	result := models.SeatProbeResult{
		ActivityID: strconv.FormatInt(activityID, 10),
		Date:       dateKey,
		Tier:       models.TierUnavailable,
		Seats:      models.IntPtr(0),
	}
	if s.check(ctx, client, activityID, date, seats) {
		result.Tier = models.TierLimited
		result.Seats = models.IntPtr(seats)
		for _, offset := range probeOffsets {
			if s.check(ctx, client, activityID, date, seats+offset) {
				result.Seats = models.IntPtr(seats + offset)
				if offset >= plentyOffset {
					result.Tier = models.TierPlenty
				}
				break
			}
		}
	}

	cache[key] = result
	return result
}

// check asks whether at least seats places are open, consulting the shared
// seat cache first. Gateway errors count as "no".
func (s *SeatProbeService) check(ctx context.Context, client ponorez.ReservationAPI, activityID int64, date time.Time, seats int) bool {
	dateKey := date.Format(util.DateLayout)
	if s.dao != nil {
		available, found, err := s.dao.GetSeatCheck(dateKey, activityID, seats)
		if err != nil {
			s.logger.Warn("[SeatProbeService] seat cache read failed", zap.Error(err))
		}
		if found {
			return available
		}
	}

	available, err := client.CheckActivityAvailability(ctx, activityID, date, seats)
	if err != nil {
		s.logger.Warn("[SeatProbeService] availability check failed",
			zap.Int64("activity_id", activityID),
			zap.String("date", dateKey),
			zap.Int("seats", seats),
			zap.Error(err))
		return false
	}

	if s.dao != nil {
		if err := s.dao.SetSeatCheck(dateKey, activityID, seats, available); err != nil {
			s.logger.Warn("[SeatProbeService] seat cache write failed", zap.Error(err))
		}
	}
	return available
}
