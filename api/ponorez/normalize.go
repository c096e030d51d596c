package ponorez

import (
	"strconv"
	"strings"
)

// Record is one loosely typed row returned by the reservation service.
type Record map[string]any

// NormalizeUpstreamResponse flattens the shapes the service answers with
// (a single object, a list of objects, a bare scalar, any of those wrapped in
// "return") into a list of records. Scalars become {"value": s}.
func NormalizeUpstreamResponse(raw any) []Record {
	switch v := raw.(type) {
	case nil:
		return []Record{}
	case Record:
		return NormalizeUpstreamResponse(map[string]any(v))
	case map[string]any:
		if inner, ok := v["return"]; ok && len(v) == 1 {
			return NormalizeUpstreamResponse(inner)
		}
		if len(v) == 0 {
			return []Record{}
		}
		return []Record{Record(v)}
	case []Record:
		return v
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			out = append(out, NormalizeUpstreamResponse(item)...)
		}
		return out
	case string:
		if strings.TrimSpace(v) == "" {
			return []Record{}
		}
		return []Record{{"value": v}}
	default:
		return []Record{{"value": v}}
	}
}

// Lookup returns the first present key, trying an exact match before a
// case-insensitive one.
func (r Record) Lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	for _, k := range keys {
		for rk, v := range r {
			if v != nil && strings.EqualFold(rk, k) {
				return v, true
			}
		}
	}
	return nil, false
}

// String returns the first non-empty string value among keys.
func (r Record) String(keys ...string) string {
	for _, k := range keys {
		v, ok := r.Lookup(k)
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first integer-looking value among keys.
func (r Record) Int(keys ...string) (int, bool) {
	for _, k := range keys {
		v, ok := r.Lookup(k)
		if !ok {
			continue
		}
		if n, ok := toInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

// Bool parses "true"/"false" style values.
func (r Record) Bool(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := r.Lookup(k)
		if !ok {
			continue
		}
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return parsed, true
			}
		}
	}
	return false, false
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// ResultBool interprets a scalar answer such as checkActivityAvailability's.
func ResultBool(raw any) bool {
	for _, rec := range NormalizeUpstreamResponse(raw) {
		if b, ok := rec.Bool("value", "available", "result"); ok {
			return b
		}
	}
	return false
}
