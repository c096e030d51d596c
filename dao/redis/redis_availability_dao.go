package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"booking-server/db"
	"booking-server/models"
)

// AVAILABILITY_KEY_FORMAT caches a whole calendar payload per supplier, activity and start date.
const AVAILABILITY_KEY_FORMAT = "availability:%s:%s:%s"

// SEAT_CHECK_KEY_FORMAT caches one yes/no seat answer per date, activity id and seat count.
const SEAT_CHECK_KEY_FORMAT = "seats:%s:%d:%d"

// RedisAvailabilityDAO stores availability snapshots in Redis. Writes are
// last-writer-wins; entries are point-in-time snapshots bounded by their ttl.
type RedisAvailabilityDAO struct {
	client      db.RedisClient
	calendarTTL time.Duration
	seatTTL     time.Duration
}

// NewRedisAvailabilityDAO initializes a RedisAvailabilityDAO with the Redis client.
func NewRedisAvailabilityDAO(client db.RedisClient, calendarTTL, seatTTL time.Duration) *RedisAvailabilityDAO {
	return &RedisAvailabilityDAO{client: client, calendarTTL: calendarTTL, seatTTL: seatTTL}
}

func CalendarKey(supplier, activity, startDate string) string {
	return fmt.Sprintf(AVAILABILITY_KEY_FORMAT, supplier, activity, startDate)
}

func SeatCheckKey(date string, activityID int64, seats int) string {
	return fmt.Sprintf(SEAT_CHECK_KEY_FORMAT, date, activityID, seats)
}

// GetCalendar returns the cached payload, or nil on a miss.
func (dao *RedisAvailabilityDAO) GetCalendar(supplier, activity, startDate string) (*models.CalendarPayload, error) {
	str, err := dao.client.Get(CalendarKey(supplier, activity, startDate))
	if errors.Is(err, db.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get calendar from redis: %w", err)
	}
	var p models.CalendarPayload
	if err := json.Unmarshal([]byte(str), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calendar JSON: %w", err)
	}
	return &p, nil
}

// SetCalendar caches a calendar payload for the calendar ttl.
func (dao *RedisAvailabilityDAO) SetCalendar(supplier, activity, startDate string, p *models.CalendarPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal calendar for %s/%s: %w", supplier, activity, err)
	}
	if err := dao.client.Set(CalendarKey(supplier, activity, startDate), string(data), dao.calendarTTL); err != nil {
		return fmt.Errorf("failed to set calendar in redis: %w", err)
	}
	return nil
}

// GetSeatCheck returns a cached seat answer and whether one was found.
func (dao *RedisAvailabilityDAO) GetSeatCheck(date string, activityID int64, seats int) (bool, bool, error) {
	str, err := dao.client.Get(SeatCheckKey(date, activityID, seats))
	if errors.Is(err, db.ErrCacheMiss) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get seat check from redis: %w", err)
	}
	ok, err := strconv.ParseBool(str)
	if err != nil {
		return false, false, fmt.Errorf("corrupt seat check value %q: %w", str, err)
	}
	return ok, true, nil
}

// SetSeatCheck caches a seat answer. A zero seat ttl disables the cache.
func (dao *RedisAvailabilityDAO) SetSeatCheck(date string, activityID int64, seats int, available bool) error {
	if dao.seatTTL <= 0 {
		return nil
	}
	if err := dao.client.Set(SeatCheckKey(date, activityID, seats), strconv.FormatBool(available), dao.seatTTL); err != nil {
		return fmt.Errorf("failed to set seat check in redis: %w", err)
	}
	return nil
}

// ListCachedCalendars returns the supplier/activity/date tuples currently cached.
func (dao *RedisAvailabilityDAO) ListCachedCalendars() ([][3]string, error) {
	keys, err := dao.client.Keys(fmt.Sprintf(AVAILABILITY_KEY_FORMAT, "*", "*", "*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar keys: %w", err)
	}
	out := make([][3]string, 0, len(keys))
	for _, k := range keys {
		parts := strings.SplitN(strings.TrimPrefix(k, "availability:"), ":", 3)
		if len(parts) != 3 {
			continue
		}
		out = append(out, [3]string{parts[0], parts[1], parts[2]})
	}
	return out, nil
}

// DeleteCalendar evicts one cached payload.
func (dao *RedisAvailabilityDAO) DeleteCalendar(supplier, activity, startDate string) error {
	key := CalendarKey(supplier, activity, startDate)
	if err := dao.client.Del(key); err != nil {
		return fmt.Errorf("failed to delete calendar key %s: %w", key, err)
	}
	return nil
}
