package ponorez

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"booking-server/models"
)

// CheckCall records one CheckActivityAvailability invocation.
type CheckCall struct {
	ActivityID int64
	Date       string
	Seats      int
}

// ReservationAPIMock serves canned rows and counts calls. DateRows are
// templates cycled over the requested range, so fixtures never go stale.
type ReservationAPIMock struct {
	mu sync.Mutex

	DateRows      []Record
	Activities    []Record
	DatesErr      error
	ActivitiesErr error
	CheckFunc     func(activityID int64, date string, seats int) (bool, error)

	DateCalls     int
	ActivityCalls int
	CheckCalls    []CheckCall

	Username string
	Password string
}

// NewReservationAPIMock creates a mock that reports every date available.
func NewReservationAPIMock() *ReservationAPIMock {
	return &ReservationAPIMock{}
}

// NewReservationAPIMockFromResources loads date templates and activities from JSON fixtures.
func NewReservationAPIMockFromResources(datesPath, activitiesPath string) (*ReservationAPIMock, error) {
	m := NewReservationAPIMock()
	if err := readRecords(datesPath, &m.DateRows); err != nil {
		return nil, err
	}
	if err := readRecords(activitiesPath, &m.Activities); err != nil {
		return nil, err
	}
	return m, nil
}

func readRecords(path string, out *[]Record) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %q: %w", path, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal %q: %w", path, err)
	}
	*out = NormalizeUpstreamResponse(raw)
	return nil
}

func (m *ReservationAPIMock) SetCredentials(username, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Username = username
	m.Password = password
}

func (m *ReservationAPIMock) GetActivityAvailableDates(ctx context.Context, supplierID, activityID int64, start, end time.Time) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DateCalls++
	if m.DatesErr != nil {
		return nil, m.DatesErr
	}

	var rows []Record
	i := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		row := Record{}
		if len(m.DateRows) > 0 {
			for k, v := range m.DateRows[i%len(m.DateRows)] {
				row[k] = v
			}
		}
		row["date"] = d.Format(dateLayout)
		rows = append(rows, row)
		i++
	}
	return rows, nil
}

func (m *ReservationAPIMock) GetActivities(ctx context.Context, supplierID int64) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ActivityCalls++
	if m.ActivitiesErr != nil {
		return nil, m.ActivitiesErr
	}
	return m.Activities, nil
}

func (m *ReservationAPIMock) CheckActivityAvailability(ctx context.Context, activityID int64, date time.Time, seats int) (bool, error) {
	m.mu.Lock()
	call := CheckCall{ActivityID: activityID, Date: date.Format(dateLayout), Seats: seats}
	m.CheckCalls = append(m.CheckCalls, call)
	check := m.CheckFunc
	m.mu.Unlock()

	if check == nil {
		return true, nil
	}
	return check(call.ActivityID, call.Date, call.Seats)
}

// Calls returns a copy of the recorded availability checks.
func (m *ReservationAPIMock) Calls() []CheckCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CheckCall, len(m.CheckCalls))
	copy(out, m.CheckCalls)
	return out
}

// Factory hands out this mock for every supplier.
func (m *ReservationAPIMock) Factory() Factory {
	return FactoryFunc(func(supplier *models.Supplier) (ReservationAPI, error) {
		if supplier != nil {
			m.SetCredentials(supplier.Username, supplier.Password)
		}
		return m, nil
	})
}
