package models

import "strings"

// AvailabilityStatus is the coarse status of one calendar day.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "available"
	StatusLimited   AvailabilityStatus = "limited"
	StatusSoldOut   AvailabilityStatus = "sold_out"
	StatusUnknown   AvailabilityStatus = "unknown"
)

// ParseAvailabilityStatus lower-cases an upstream status. Spaces and dashes
// become underscores so "Sold Out" and "sold-out" both read as sold_out.
// An empty status means available.
func ParseAvailabilityStatus(raw string) AvailabilityStatus {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return StatusAvailable
	}
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if s == "soldout" {
		return StatusSoldOut
	}
	return AvailabilityStatus(s)
}

// Bookable reports whether a guest can pick the day.
func (s AvailabilityStatus) Bookable() bool {
	return s == StatusAvailable || s == StatusLimited
}

// AvailabilityDay is one day of an availability calendar.
type AvailabilityDay struct {
	Date   string             `json:"date"`
	Status AvailabilityStatus `json:"status"`
}

// AvailabilityCalendar keeps days in insertion order with at most one entry
// per date. Adding a date twice replaces the earlier status in place.
type AvailabilityCalendar struct {
	days  []AvailabilityDay
	index map[string]int
}

func NewAvailabilityCalendar() *AvailabilityCalendar {
	return &AvailabilityCalendar{index: make(map[string]int)}
}

// AddDay appends a day, or overwrites the status of an existing date.
func (c *AvailabilityCalendar) AddDay(date string, status AvailabilityStatus) {
	if i, ok := c.index[date]; ok {
		c.days[i].Status = status
		return
	}
	c.index[date] = len(c.days)
	c.days = append(c.days, AvailabilityDay{Date: date, Status: status})
}

// Days returns a copy of the calendar rows.
func (c *AvailabilityCalendar) Days() []AvailabilityDay {
	out := make([]AvailabilityDay, len(c.days))
	copy(out, c.days)
	return out
}

// Status returns the status of a date and whether it is present.
func (c *AvailabilityCalendar) Status(date string) (AvailabilityStatus, bool) {
	i, ok := c.index[date]
	if !ok {
		return "", false
	}
	return c.days[i].Status, true
}

func (c *AvailabilityCalendar) Len() int {
	return len(c.days)
}

// FirstBookableDate returns the first day whose status is available or limited.
func (c *AvailabilityCalendar) FirstBookableDate() string {
	for _, d := range c.days {
		if d.Status.Bookable() {
			return d.Date
		}
	}
	return ""
}
