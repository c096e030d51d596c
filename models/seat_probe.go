package models

// ProbeTier is the confidence class produced by the seat prober.
type ProbeTier string

const (
	TierUnavailable ProbeTier = "unavailable"
	TierLimited     ProbeTier = "limited"
	TierPlenty      ProbeTier = "plenty"
)

// ProbeRequest is one caller supplied (activity, date) pair. ActivityID is
// kept loosely typed: callers send bare numbers, numeric strings or
// "timeslot-<id>".
type ProbeRequest struct {
	ActivityID any    `json:"activityId"`
	Date       string `json:"date"`
}

// SeatProbeResult is the probe outcome for one request. ActivityID echoes the
// identifier exactly as the caller sent it.
type SeatProbeResult struct {
	ActivityID string    `json:"activityId"`
	Date       string    `json:"date"`
	Tier       ProbeTier `json:"tier"`
	Seats      *int      `json:"seats"`
}

type SeatProbeResponse struct {
	RequestedSeats int               `json:"requestedSeats"`
	Messages       []SeatProbeResult `json:"messages"`
}
