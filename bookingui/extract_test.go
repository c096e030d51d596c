package bookingui

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return m
}

func TestFieldAndFirstOf(t *testing.T) {
	v := map[string]any{"DepartureTime": "7:30 AM", "seats": 12.0, "blank": "  "}

	got, ok := Field("departureTime")(v)
	assert.True(t, ok)
	assert.Equal(t, "7:30 AM", got)

	got, ok = Field("seats")(v)
	assert.True(t, ok)
	assert.Equal(t, "12", got)

	_, ok = Field("blank")(v)
	assert.False(t, ok)
	_, ok = Field("seats")("not an object")
	assert.False(t, ok)

	got, ok = FirstOf(Field("missing"), Field("blank"), Field("seats"))(v)
	assert.True(t, ok)
	assert.Equal(t, "12", got)
}

func TestAvailableIDs(t *testing.T) {
	tests := []struct {
		name   string
		entry  string
		want   []string
		signal bool
	}{
		{"no entry", `null`, nil, false},
		{"no signal", `{"seats": 12, "note": "windy"}`, nil, false},
		{"explicit list", `{"availableActivityIds": [369, "555"], "activityIds": [777]}`, []string{"369", "555"}, true},
		{"explicit empty list", `{"availableIds": []}`, []string{}, true},
		{"activities array", `{"activities": [{"activityId": "369", "available": "true"}, {"activityId": "555", "available": "false"}, {"id": 777}]}`, []string{"369", "777"}, true},
		{"activities with status", `{"activities": [{"aid": 369, "status": "Sold Out"}, {"aid": 555, "status": "open"}]}`, []string{"555"}, true},
		{"departures map", `{"departures": {"555": {"departureTime": "12:30 PM"}, "369": {"available": false}, "777": true}}`, []string{"555", "777"}, true},
		{"legacy activityIds", `{"activityIds": ["369", "555"]}`, []string{"369", "555"}, true},
		{"legacy aids", `{"aids": [369]}`, []string{"369"}, true},
		{"legacy empty ids", `{"ids": []}`, []string{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entry map[string]any
			if tt.entry != "null" {
				entry = decode(t, tt.entry)
			}
			got, signal := AvailableIDs(entry)
			assert.Equal(t, tt.signal, signal)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtendedEntryKeys(t *testing.T) {
	for _, key := range []string{"extended", "extendedAvailability", "availabilityByDate"} {
		metadata := decode(t, `{"`+key+`": {"2024-08-01": {"ids": [1]}}}`)
		entry, ok := extendedEntry(metadata, "2024-08-01")
		assert.True(t, ok, key)
		assert.Contains(t, entry, "ids")
	}

	_, ok := extendedEntry(decode(t, `{"extended": "oops"}`), "2024-08-01")
	assert.False(t, ok)
	_, ok = extendedEntry(nil, "2024-08-01")
	assert.False(t, ok)
}
