package bookingui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"booking-server/api"
	"booking-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_FetchAvailability(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/availability", r.URL.Path)
		got = map[string]string{}
		for key := range r.URL.Query() {
			got[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"calendar": [{"date": "2024-08-10", "status": "limited"}],
			"timeslots": [{"id": "369", "label": "7:30 AM", "available": 4}],
			"metadata": {"source": "ponorez", "firstAvailableDate": "2024-08-10"}
		}`))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(api.NewHTTPClient(server.URL))
	resp, err := fetcher.FetchAvailability(context.Background(), AvailabilityRequest{
		Supplier:    "reef-co",
		Activity:    "snorkel",
		Date:        "2024-08-10",
		Month:       "2024-08",
		ActivityIDs: []string{"369", "555"},
		GuestCounts: map[string]int{"adult": 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "reef-co", got["supplier"])
	assert.Equal(t, "2024-08", got["month"])
	assert.JSONEq(t, `["369","555"]`, got["activityIds"])
	assert.JSONEq(t, `{"adult":2}`, got["guestCounts"])

	require.Len(t, resp.Calendar, 1)
	assert.Equal(t, models.StatusLimited, resp.Calendar[0].Status)
	assert.Equal(t, 4, *resp.Timeslots[0].Available)
	assert.Equal(t, "2024-08-10", TypedMetadata(resp.Metadata).FirstAvailableDate)
}

func TestHTTPFetcher_OmitsActivityIDsWithoutDate(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"calendar": [], "timeslots": [], "metadata": {}}`))
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(api.NewHTTPClient(server.URL)).FetchAvailability(context.Background(), AvailabilityRequest{
		Month:       "2024-09",
		ActivityIDs: []string{"369"},
	})
	require.NoError(t, err)
	assert.NotContains(t, query, "activityIds")
	assert.NotContains(t, query, "date")
	assert.NotContains(t, query, "guestCounts")
}

func TestHTTPFetcher_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "gateway down"})
	}))
	defer server.Close()

	_, err := NewHTTPFetcher(api.NewHTTPClient(server.URL)).FetchAvailability(context.Background(), AvailabilityRequest{})
	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestHTTPFetcher_FetchBootstrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bootstrap", r.URL.Path)
		assert.Equal(t, "snorkel", r.URL.Query().Get("activity"))
		w.Write([]byte(`{"supplier": "reef-co", "activity": "snorkel", "activityIds": ["369"], "activityOrder": ["369"]}`))
	}))
	defer server.Close()

	cfg, err := NewHTTPFetcher(api.NewHTTPClient(server.URL)).FetchBootstrap(context.Background(), "", "snorkel")
	require.NoError(t, err)
	assert.Equal(t, "reef-co", cfg.Supplier)
	assert.Equal(t, []string{"369"}, cfg.ActivityIDs)
}

func TestParseBootstrap(t *testing.T) {
	cfg, err := ParseBootstrap([]byte(`{"supplier": "reef-co", "departureLabels": {"555": "Afternoon Sail"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Afternoon Sail", cfg.DepartureLabels["555"])
	assert.NotNil(t, cfg.ActivityNames)

	_, err = ParseBootstrap([]byte(`{not json`))
	assert.Error(t, err)
}
