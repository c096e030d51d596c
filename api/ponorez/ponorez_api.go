package ponorez

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking-server/models"
)

var (
	ErrGatewayFault       = errors.New("ponorez gateway fault")
	ErrMissingCredentials = errors.New("ponorez credentials missing")
)

// FaultError carries a SOAP fault returned by the reservation service.
type FaultError struct {
	Code    string
	Message string
}

func (e *FaultError) Error() string {
	if e.Code == "" {
		return "ponorez fault: " + e.Message
	}
	return fmt.Sprintf("ponorez fault %s: %s", e.Code, e.Message)
}

func (e *FaultError) Unwrap() error {
	return ErrGatewayFault
}

// ReservationAPI defines the calls made against the Ponorez reservation service.
// Every list result has already been through NormalizeUpstreamResponse.
type ReservationAPI interface {
	SetCredentials(username, password string)
	GetActivityAvailableDates(ctx context.Context, supplierID, activityID int64, start, end time.Time) ([]Record, error)
	GetActivities(ctx context.Context, supplierID int64) ([]Record, error)
	CheckActivityAvailability(ctx context.Context, activityID int64, date time.Time, seats int) (bool, error)
}

// Factory builds a ReservationAPI authenticated for one supplier.
type Factory interface {
	NewReservationAPI(supplier *models.Supplier) (ReservationAPI, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(supplier *models.Supplier) (ReservationAPI, error)

func (f FactoryFunc) NewReservationAPI(supplier *models.Supplier) (ReservationAPI, error) {
	return f(supplier)
}
