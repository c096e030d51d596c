package bookingui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"booking-server/api"
	"booking-server/models"
)

// AvailabilityRequest is what the orchestrator asks the server for.
type AvailabilityRequest struct {
	Supplier    string
	Activity    string
	Date        string
	Month       string
	ActivityIDs []string
	GuestCounts map[string]int
}

// AvailabilityResponse is the server payload with metadata left loosely
// typed for the merger.
type AvailabilityResponse struct {
	Calendar  []models.AvailabilityDay `json:"calendar"`
	Timeslots []models.Timeslot        `json:"timeslots"`
	Metadata  map[string]any           `json:"metadata"`
}

// Fetcher loads availability. Implementations must honour ctx cancellation.
type Fetcher interface {
	FetchAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error)

func (f FetcherFunc) FetchAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	return f(ctx, req)
}

// HTTPFetcher calls GET /api/availability on the booking server.
type HTTPFetcher struct {
	*api.HTTPClient
}

func NewHTTPFetcher(httpClient *api.HTTPClient) *HTTPFetcher {
	return &HTTPFetcher{HTTPClient: httpClient}
}

func (f *HTTPFetcher) FetchAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResponse, error) {
	query := url.Values{}
	setIf(query, "supplier", req.Supplier)
	setIf(query, "activity", req.Activity)
	setIf(query, "date", req.Date)
	setIf(query, "month", req.Month)
	if req.Date != "" && len(req.ActivityIDs) > 0 {
		ids, err := json.Marshal(req.ActivityIDs)
		if err != nil {
			return nil, err
		}
		query.Set("activityIds", string(ids))
	}
	if len(req.GuestCounts) > 0 {
		counts, err := json.Marshal(req.GuestCounts)
		if err != nil {
			return nil, err
		}
		query.Set("guestCounts", string(counts))
	}

	var resp AvailabilityResponse
	if err := f.Get(ctx, "/api/availability", query, &resp); err != nil {
		return nil, fmt.Errorf("fetch availability: %w", err)
	}
	return &resp, nil
}

// FetchBootstrap loads the page configuration from GET /api/bootstrap.
func (f *HTTPFetcher) FetchBootstrap(ctx context.Context, supplier, activity string) (*models.BootstrapConfig, error) {
	query := url.Values{}
	setIf(query, "supplier", supplier)
	setIf(query, "activity", activity)

	var cfg models.BootstrapConfig
	if err := f.Get(ctx, "/api/bootstrap", query, &cfg); err != nil {
		return nil, fmt.Errorf("fetch bootstrap: %w", err)
	}
	return &cfg, nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// ParseBootstrap decodes the configuration blob embedded in the page.
func ParseBootstrap(data []byte) (*models.BootstrapConfig, error) {
	var cfg models.BootstrapConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid bootstrap config: %w", err)
	}
	if cfg.DepartureLabels == nil {
		cfg.DepartureLabels = map[string]string{}
	}
	if cfg.ActivityNames == nil {
		cfg.ActivityNames = map[string]string{}
	}
	return &cfg, nil
}

// TypedMetadata reads the well-known metadata fields out of a loose map.
func TypedMetadata(metadata map[string]any) models.CalendarMetadata {
	var typed models.CalendarMetadata
	data, err := json.Marshal(metadata)
	if err != nil {
		return typed
	}
	_ = json.Unmarshal(data, &typed)
	return typed
}
