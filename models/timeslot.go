package models

// Timeslot is one departure of an activity on a date. A nil Available means
// the seat count is unknown and will be confirmed at checkout.
type Timeslot struct {
	ID        string            `json:"id"`
	Label     string            `json:"label"`
	Available *int              `json:"available"`
	Details   map[string]string `json:"details,omitempty"`
}

// Selectable reports whether the slot can be chosen by default.
func (t Timeslot) Selectable() bool {
	return t.Available == nil || *t.Available > 0
}

// IntPtr is a small helper for optional seat counts.
func IntPtr(v int) *int {
	return &v
}
