package bookingui

import (
	"sort"
	"strconv"
	"strings"

	"booking-server/models"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultLabel is the placeholder shown for a departure without a known label.
func DefaultLabel(id string) string {
	return "Departure " + id
}

func isPlaceholder(label, id string) bool {
	return strings.EqualFold(strings.TrimSpace(label), DefaultLabel(id))
}

// DeriveTimeslots reconciles the server's timeslots with the extended
// metadata for selectedDate.
//
// With a non-empty primary list the metadata can only narrow it: no signal
// keeps every slot, an explicit empty set removes every slot, otherwise the
// list is intersected with the available ids. With an empty primary list the
// slots are synthesized from the available ids in display order. Labels are
// enhanced on both paths.
func DeriveTimeslots(cfg *models.BootstrapConfig, selectedDate string, primary []models.Timeslot, metadata map[string]any) []models.Timeslot {
	if cfg == nil {
		cfg = &models.BootstrapConfig{}
	}
	entry, _ := extendedEntry(metadata, selectedDate)
	available, signal := AvailableIDs(entry)

	var slots []models.Timeslot
	if len(primary) > 0 {
		slots = filterPrimary(primary, available, signal)
	} else {
		slots = synthesize(cfg, available)
	}

	for i := range slots {
		slots[i].Label = resolveLabel(cfg, entry, slots[i])
	}
	return slots
}

func filterPrimary(primary []models.Timeslot, available []string, signal bool) []models.Timeslot {
	allowed := make(map[string]bool, len(available))
	for _, id := range available {
		allowed[id] = true
	}

	seen := make(map[string]bool, len(primary))
	out := make([]models.Timeslot, 0, len(primary))
	for _, slot := range primary {
		if seen[slot.ID] {
			continue
		}
		if signal && !allowed[slot.ID] {
			continue
		}
		seen[slot.ID] = true
		out = append(out, copySlot(slot))
	}
	return out
}

func synthesize(cfg *models.BootstrapConfig, available []string) []models.Timeslot {
	unique := make([]string, 0, len(available))
	seen := make(map[string]bool, len(available))
	for _, id := range available {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	sortIDs(unique, cfg.ActivityOrder)

	out := make([]models.Timeslot, 0, len(unique))
	for _, id := range unique {
		label := cfg.DepartureLabels[id]
		if label == "" {
			label = DefaultLabel(id)
		}
		out = append(out, models.Timeslot{ID: id, Label: label})
	}
	return out
}

func copySlot(slot models.Timeslot) models.Timeslot {
	if slot.Details != nil {
		details := make(map[string]string, len(slot.Details))
		for k, v := range slot.Details {
			details[k] = v
		}
		slot.Details = details
	}
	return slot
}

// resolveLabel returns the best label for slot. Candidates equal to the
// placeholder never count as a label.
func resolveLabel(cfg *models.BootstrapConfig, entry map[string]any, slot models.Timeslot) string {
	candidates := make([]string, 0, 4)
	if detail, ok := activityDetail(entry, slot.ID); ok {
		if label, ok := detailLabel(detail); ok {
			candidates = append(candidates, label)
		}
	}
	if times, ok := lookup(entry, "times"); ok {
		if label, ok := Field(slot.ID)(times); ok {
			candidates = append(candidates, label)
		}
	}
	candidates = append(candidates, cfg.ActivityNames[slot.ID], cfg.DepartureLabels[slot.ID])

	for _, label := range candidates {
		if label = strings.TrimSpace(label); label != "" && !isPlaceholder(label, slot.ID) {
			return label
		}
	}
	if strings.TrimSpace(slot.Label) == "" {
		return DefaultLabel(slot.ID)
	}
	return slot.Label
}

// sortIDs orders ids by their position in order, then integer ids
// numerically, then everything else by locale-aware string comparison.
func sortIDs(ids []string, order []string) {
	rank := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := rank[id]; !ok {
			rank[id] = i
		}
	}
	collator := collate.New(language.English)

	sort.SliceStable(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		ra, aRanked := rank[a]
		rb, bRanked := rank[b]
		switch {
		case aRanked && bRanked:
			return ra < rb
		case aRanked != bRanked:
			return aRanked
		}
		na, aErr := strconv.ParseInt(a, 10, 64)
		nb, bErr := strconv.ParseInt(b, 10, 64)
		switch {
		case aErr == nil && bErr == nil && na != nb:
			return na < nb
		case (aErr == nil) != (bErr == nil):
			// integer ids come before the rest
			return aErr == nil
		}
		return collator.CompareString(a, b) < 0
	})
}

// SelectTimeslot keeps current when it is still listed and not sold out,
// otherwise picks the first slot with unknown or positive seats. It returns
// "" when nothing can be selected.
func SelectTimeslot(slots []models.Timeslot, current string) string {
	if current != "" {
		for _, slot := range slots {
			if slot.ID == current && slot.Selectable() {
				return current
			}
		}
	}
	for _, slot := range slots {
		if slot.Selectable() {
			return slot.ID
		}
	}
	return ""
}
