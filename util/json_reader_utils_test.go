package util

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"booking-server/models"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tempFile, err := os.CreateTemp("", "test*.json")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	_, err = tempFile.Write([]byte(content))
	if err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	tempFile.Close()
	return tempFile.Name()
}

func TestReadSuppliersFromJSON(t *testing.T) {
	// Arrange
	content := `[{
		"slug": "reef-co",
		"name": "Reef Co",
		"supplierId": 1001,
		"activities": [{
			"slug": "snorkel",
			"activityId": 369,
			"activityIds": [369, 555],
			"guestTypes": [{"id": "adult", "name": "Adult", "minimum": 1}]
		}]
	}]`
	tempFile := createTempFile(t, content)
	defer os.Remove(tempFile)

	// Act
	suppliers, err := ReadSuppliersFromJSON(tempFile)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(suppliers) != 1 {
		t.Fatalf("Expected 1 supplier, got %d", len(suppliers))
	}
	if suppliers[0].SupplierID != 1001 {
		t.Errorf("Expected SupplierID 1001, got %d", suppliers[0].SupplierID)
	}
	activity, ok := suppliers[0].FindActivity("snorkel")
	if !ok {
		t.Fatalf("Expected activity snorkel")
	}
	if !activity.HasTimeslot(555) {
		t.Errorf("Expected timeslot 555 to be configured, got %v", activity.TimeslotIDs)
	}
}

func TestReadCalendarPayloadFromJSON(t *testing.T) {
	// Arrange
	content := `{
		"calendar": [{"date": "2024-08-01", "status": "sold_out"}, {"date": "2024-08-02", "status": "limited"}],
		"timeslots": [{"id": "369", "label": "7:30 AM", "available": null}],
		"metadata": {"source": "ponorez", "firstAvailableDate": "2024-08-02"}
	}`
	tempFile := createTempFile(t, content)
	defer os.Remove(tempFile)

	// Act
	payload, err := ReadCalendarPayloadFromJSON(tempFile)

	// Assert
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(payload.Calendar) != 2 || payload.Calendar[1].Status != models.StatusLimited {
		t.Errorf("Unexpected calendar %+v", payload.Calendar)
	}
	if payload.Timeslots[0].Available != nil {
		t.Errorf("Expected unknown seat count, got %d", *payload.Timeslots[0].Available)
	}
	if payload.Metadata.FirstAvailableDate != "2024-08-02" {
		t.Errorf("Expected first available 2024-08-02, got %s", payload.Metadata.FirstAvailableDate)
	}
}

func TestReadCalendarPayloadFromJSON_Invalid(t *testing.T) {
	tempFile := createTempFile(t, `{"calendar": "nope"`)
	defer os.Remove(tempFile)

	if _, err := ReadCalendarPayloadFromJSON(tempFile); err == nil {
		t.Fatal("Expected an error for malformed JSON")
	}
	if _, err := ReadSuppliersFromJSON("does-not-exist.json"); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestPrintCalendarAndTimeslots(t *testing.T) {
	payload := &models.CalendarPayload{
		Calendar: []models.AvailabilityDay{
			{Date: "2024-08-01", Status: models.StatusSoldOut},
			{Date: "2024-08-02", Status: models.StatusAvailable},
		},
		Metadata: models.CalendarMetadata{Source: models.SourceCache, FirstAvailableDate: "2024-08-02"},
	}
	var buf bytes.Buffer
	PrintCalendarPartially(&buf, payload)
	PrintTimeslots(&buf, []models.Timeslot{
		{ID: "369", Label: "7:30 AM", Available: models.IntPtr(1200)},
		{ID: "555", Label: "12:30 PM"},
	}, "369")

	out := buf.String()
	for _, want := range []string{"Source: cache", "available 1", "sold out 1", "First available: 2024-08-02", "* 369", "1,200 seats", "ask at checkout"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}

	buf.Reset()
	PrintTimeslots(&buf, nil, "")
	if !strings.Contains(buf.String(), "No departures") {
		t.Errorf("Expected empty state message, got %q", buf.String())
	}
}
