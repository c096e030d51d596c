package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-08-01", "2024-08-01", true},
		{" 2024-08-01 ", "2024-08-01", true},
		{"2024-08-01T07:30:00", "2024-08-01", true},
		{"2024-08-01T23:30:00-10:00", "2024-08-01", true},
		{"08/01/2024", "2024-08-01", true},
		{"2024/08/01", "2024-08-01", true},
		{"2024-02-30", "", false},
		{"tomorrow", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeDate(tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-09")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC), m)

	_, err = ParseMonth("2024-13")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestIsLastDayOfMonth(t *testing.T) {
	assert.True(t, IsLastDayOfMonth(time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)))
	assert.True(t, IsLastDayOfMonth(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
	assert.False(t, IsLastDayOfMonth(time.Date(2024, 8, 30, 0, 0, 0, 0, time.UTC)))
}

func TestToday(t *testing.T) {
	now := time.Date(2024, 8, 5, 22, 15, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 8, 5, 0, 0, 0, 0, time.UTC), Today(now))
}
