package util

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"booking-server/models"

	"github.com/dustin/go-humanize"
)

// ReadSuppliersFromJSON loads a supplier list from JSON on disk.
func ReadSuppliersFromJSON(filePath string) ([]models.Supplier, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var suppliers []models.Supplier
	if err := json.Unmarshal(data, &suppliers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suppliers: %w", err)
	}
	return suppliers, nil
}

// ReadCalendarPayloadFromJSON loads a CalendarPayload from JSON on disk.
func ReadCalendarPayloadFromJSON(filePath string) (*models.CalendarPayload, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	var payload models.CalendarPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CalendarPayload: %w", err)
	}
	return &payload, nil
}

// PrintCalendarPartially prints key fields of a CalendarPayload.
func PrintCalendarPartially(w io.Writer, payload *models.CalendarPayload) {
	meta := payload.Metadata
	fmt.Fprintf(w, "Source: %s", meta.Source)
	if !meta.GeneratedAt.IsZero() {
		fmt.Fprintf(w, " (generated %s)", humanize.Time(meta.GeneratedAt))
	}
	fmt.Fprintln(w)
	if meta.Fallback {
		fmt.Fprintf(w, "Fallback calendar: %s\n", meta.Error)
	}

	counts := map[models.AvailabilityStatus]int{}
	for _, day := range payload.Calendar {
		counts[day.Status]++
	}
	fmt.Fprintf(w, "Days: %d (available %d, limited %d, sold out %d, unknown %d)\n",
		len(payload.Calendar),
		counts[models.StatusAvailable], counts[models.StatusLimited],
		counts[models.StatusSoldOut], counts[models.StatusUnknown])
	if meta.FirstAvailableDate != "" {
		fmt.Fprintf(w, "First available: %s\n", meta.FirstAvailableDate)
	}
}

// PrintTimeslots prints one line per timeslot.
func PrintTimeslots(w io.Writer, timeslots []models.Timeslot, selectedID string) {
	if len(timeslots) == 0 {
		fmt.Fprintln(w, "No departures, try another date.")
		return
	}
	for _, slot := range timeslots {
		marker := " "
		if slot.ID == selectedID {
			marker = "*"
		}
		seats := "ask at checkout"
		if slot.Available != nil {
			seats = humanize.Comma(int64(*slot.Available)) + " seats"
		}
		fmt.Fprintf(w, "%s %-8s %-24s %s\n", marker, slot.ID, slot.Label, seats)
	}
}
