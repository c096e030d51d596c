package bookingui

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Extractor pulls one string out of a loosely typed JSON value.
type Extractor func(v any) (string, bool)

// Field reads key from an object, exact match first and then ignoring case,
// and accepts string and number values.
func Field(key string) Extractor {
	return func(v any) (string, bool) {
		raw, ok := lookup(v, key)
		if !ok {
			return "", false
		}
		return scalar(raw)
	}
}

// FirstOf tries extractors in order and returns the first hit.
func FirstOf(extractors ...Extractor) Extractor {
	return func(v any) (string, bool) {
		for _, ex := range extractors {
			if s, ok := ex(v); ok {
				return s, true
			}
		}
		return "", false
	}
}

// Fields builds a FirstOf over plain key lookups.
func Fields(keys ...string) Extractor {
	extractors := make([]Extractor, 0, len(keys))
	for _, k := range keys {
		extractors = append(extractors, Field(k))
	}
	return FirstOf(extractors...)
}

// labelKeys is the priority order for a departure label inside a per-activity
// detail object.
var labelKeys = []string{
	"times", "time", "departure", "departureTime", "departure_time",
	"checkIn", "checkin", "checkInTime", "checkin_time",
	"startTime", "start_time", "start",
	"label", "name", "title", "displayName", "display",
}

var (
	detailLabel = Fields(labelKeys...)
	activityID  = Fields("activityId", "activity_id", "id", "aid", "activityID")
)

// extended-metadata container names, tried in order
var (
	extendedKeys       = []string{"extended", "extendedAvailability", "availabilityByDate"}
	explicitListKeys   = []string{"availableActivityIds", "availableIds", "available_activity_ids", "available_ids"}
	collectionKeys     = []string{"activities", "departures"}
	legacyListKeys     = []string{"activityIds", "aids", "ids"}
	unavailableMarkers = []string{"sold_out", "soldout", "sold out", "unavailable", "closed", "full"}
)

func lookup(v any, key string) (any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	if raw, ok := m[key]; ok && raw != nil {
		return raw, true
	}
	for k, raw := range m {
		if raw != nil && strings.EqualFold(k, key) {
			return raw, true
		}
	}
	return nil, false
}

func lookupAny(v any, keys []string) (any, bool) {
	for _, k := range keys {
		if raw, ok := lookup(v, k); ok {
			return raw, true
		}
	}
	return nil, false
}

func scalar(v any) (string, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	case json.Number:
		s = t.String()
	}
	return s, s != ""
}

// ids flattens an array of scalars into id strings.
func ids(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		if strs, ok := v.([]string); ok {
			return strs, true
		}
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := scalar(item); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// explicitlyUnavailable reports whether a collection entry says it cannot be booked.
func explicitlyUnavailable(v any) bool {
	switch t := v.(type) {
	case bool:
		return !t
	case map[string]any:
		if raw, ok := lookupAny(t, []string{"available", "isAvailable", "bookable"}); ok {
			switch a := raw.(type) {
			case bool:
				return !a
			case float64:
				return a <= 0
			case string:
				switch strings.ToLower(strings.TrimSpace(a)) {
				case "false", "0", "no", "n":
					return true
				}
			}
		}
		if status, ok := Fields("status", "availability")(t); ok {
			status = strings.ToLower(status)
			for _, marker := range unavailableMarkers {
				if status == marker {
					return true
				}
			}
		}
	}
	return false
}

// extendedEntry returns the per-date entry of the extended metadata feed.
func extendedEntry(metadata map[string]any, date string) (map[string]any, bool) {
	if metadata == nil || date == "" {
		return nil, false
	}
	for _, key := range extendedKeys {
		byDate, ok := lookup(metadata, key)
		if !ok {
			continue
		}
		dates, ok := byDate.(map[string]any)
		if !ok {
			continue
		}
		if entry, ok := dates[date].(map[string]any); ok {
			return entry, true
		}
	}
	return nil, false
}

// AvailableIDs derives the confirmed-available departure ids for an extended
// entry. ok is false when the entry carries no availability signal at all;
// an empty slice with ok true means nothing is available.
func AvailableIDs(entry map[string]any) ([]string, bool) {
	if entry == nil {
		return nil, false
	}
	if raw, ok := lookupAny(entry, explicitListKeys); ok {
		if list, ok := ids(raw); ok {
			return list, true
		}
	}
	for _, key := range collectionKeys {
		raw, ok := lookup(entry, key)
		if !ok {
			continue
		}
		if list, ok := collectionIDs(raw); ok {
			return list, true
		}
	}
	if raw, ok := lookupAny(entry, legacyListKeys); ok {
		if list, ok := ids(raw); ok {
			return list, true
		}
	}
	return nil, false
}

func collectionIDs(raw any) ([]string, bool) {
	switch c := raw.(type) {
	case []any:
		out := make([]string, 0, len(c))
		for _, item := range c {
			if explicitlyUnavailable(item) {
				continue
			}
			if id, ok := activityID(item); ok {
				out = append(out, id)
			} else if id, ok := scalar(item); ok {
				out = append(out, id)
			}
		}
		return out, true
	case map[string]any:
		out := make([]string, 0, len(c))
		for id, item := range c {
			if !explicitlyUnavailable(item) {
				out = append(out, id)
			}
		}
		sortIDs(out, nil)
		return out, true
	}
	return nil, false
}

// activityDetail finds the per-activity object for id inside an extended entry.
func activityDetail(entry map[string]any, id string) (map[string]any, bool) {
	for _, key := range collectionKeys {
		raw, ok := lookup(entry, key)
		if !ok {
			continue
		}
		switch c := raw.(type) {
		case []any:
			for _, item := range c {
				if got, ok := activityID(item); ok && got == id {
					if m, ok := item.(map[string]any); ok {
						return m, true
					}
				}
			}
		case map[string]any:
			if m, ok := c[id].(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}
