package ponorez

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"booking-server/api"
	"booking-server/models"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// PonorezApiClient talks SOAP to the reservation service over the shared HTTPClient.
type PonorezApiClient struct {
	*api.HTTPClient
	username string
	password string
	logger   *zap.Logger
}

// NewPonorezApiClient creates a new instance of PonorezApiClient
func NewPonorezApiClient(httpClient *api.HTTPClient, logger *zap.Logger) *PonorezApiClient {
	return &PonorezApiClient{
		HTTPClient: httpClient,
		logger:     logger,
	}
}

func (c *PonorezApiClient) SetCredentials(username, password string) {
	c.username = username
	c.password = password
}

func (c *PonorezApiClient) serviceLogin() soapParam {
	return soapParam{Name: "serviceLogin", Value: []soapParam{
		{Name: "username", Value: c.username},
		{Name: "password", Value: c.password},
	}}
}

// call posts one operation and returns its decoded response element.
func (c *PonorezApiClient) call(ctx context.Context, operation string, params []soapParam) (any, error) {
	envelope, err := buildEnvelope(operation, append([]soapParam{c.serviceLogin()}, params...))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s envelope: %w", operation, err)
	}

	started := time.Now()
	body, err := c.Do(ctx, "POST", "", map[string]string{
		"Content-Type": "text/xml; charset=utf-8",
		"SOAPAction":   `"` + operation + `"`,
	}, bytes.NewReader(envelope))
	c.logger.Debug("[PonorezApiClient] call finished",
		zap.String("operation", operation),
		zap.Duration("elapsed", time.Since(started)),
		zap.Error(err))

	if err != nil {
		// SOAP faults come back as HTTP 500 with a Fault body.
		var statusErr *api.StatusError
		if errors.As(err, &statusErr) && len(statusErr.Body) > 0 {
			if _, faultErr := decodeEnvelope(statusErr.Body); faultErr != nil {
				var fault *FaultError
				if errors.As(faultErr, &fault) {
					return nil, fault
				}
			}
		}
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrGatewayFault, err)
	}

	resp, err := decodeEnvelope(body)
	if err != nil {
		var fault *FaultError
		if errors.As(err, &fault) {
			return nil, fault
		}
		return nil, fmt.Errorf("%s: %w: %v", operation, ErrGatewayFault, err)
	}
	return resp, nil
}

// GetActivityAvailableDates lists day rows for an activity between start and end.
func (c *PonorezApiClient) GetActivityAvailableDates(ctx context.Context, supplierID, activityID int64, start, end time.Time) ([]Record, error) {
	resp, err := c.call(ctx, "getActivityAvailableDates", []soapParam{
		{Name: "supplierId", Value: strconv.FormatInt(supplierID, 10)},
		{Name: "activityId", Value: strconv.FormatInt(activityID, 10)},
		{Name: "minDate", Value: start.Format(dateLayout)},
		{Name: "maxDate", Value: end.Format(dateLayout)},
	})
	if err != nil {
		return nil, err
	}
	return NormalizeUpstreamResponse(resp), nil
}

// GetActivities lists the supplier's activities, one row per departure.
func (c *PonorezApiClient) GetActivities(ctx context.Context, supplierID int64) ([]Record, error) {
	resp, err := c.call(ctx, "getActivities", []soapParam{
		{Name: "supplierId", Value: strconv.FormatInt(supplierID, 10)},
	})
	if err != nil {
		return nil, err
	}
	return NormalizeUpstreamResponse(resp), nil
}

// CheckActivityAvailability answers whether at least seats are free.
func (c *PonorezApiClient) CheckActivityAvailability(ctx context.Context, activityID int64, date time.Time, seats int) (bool, error) {
	resp, err := c.call(ctx, "checkActivityAvailability", []soapParam{
		{Name: "activityId", Value: strconv.FormatInt(activityID, 10)},
		{Name: "date", Value: date.Format(dateLayout)},
		{Name: "requestedAvailability", Value: []soapParam{
			{Name: "seats", Value: strconv.Itoa(seats)},
		}},
	})
	if err != nil {
		return false, err
	}
	return ResultBool(resp), nil
}

// HTTPFactory builds authenticated SOAP clients sharing one HTTPClient, so
// every supplier draws from the same outbound rate limit.
type HTTPFactory struct {
	HTTPClient *api.HTTPClient
	Logger     *zap.Logger
}

func (f *HTTPFactory) NewReservationAPI(supplier *models.Supplier) (ReservationAPI, error) {
	if supplier == nil || supplier.Username == "" || supplier.Password == "" {
		return nil, ErrMissingCredentials
	}
	client := NewPonorezApiClient(f.HTTPClient, f.Logger)
	client.SetCredentials(supplier.Username, supplier.Password)
	return client, nil
}
