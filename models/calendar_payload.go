package models

import "time"

const (
	SourcePonorez  = "ponorez"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// CalendarMetadata travels next to the calendar rows. Extended holds the
// loosely shaped per-date records the client merges into its timeslot list.
type CalendarMetadata struct {
	Source             string                    `json:"source"`
	Fallback           bool                      `json:"fallback,omitempty"`
	Error              string                    `json:"error,omitempty"`
	StartDate          string                    `json:"startDate"`
	FirstAvailableDate string                    `json:"firstAvailableDate,omitempty"`
	GeneratedAt        time.Time                 `json:"generatedAt"`
	Extended           map[string]map[string]any `json:"extended,omitempty"`
	SeatProbe          *SeatProbeResponse        `json:"seatProbe,omitempty"`
}

// CalendarPayload is the full result of a calendar build and the unit that is
// cached under availability:<supplier>:<activity>:<date>.
type CalendarPayload struct {
	Calendar  []AvailabilityDay `json:"calendar"`
	Timeslots []Timeslot        `json:"timeslots"`
	Metadata  CalendarMetadata  `json:"metadata"`
}
