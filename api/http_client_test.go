package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Request_Success(t *testing.T) {
	mockResponse := map[string]string{"message": "success"}
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/test-endpoint" {
			t.Errorf("Expected endpoint '/test-endpoint', got '%s'", r.URL.Path)
		}
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(mockResponse)
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "GET", "/test-endpoint", nil, nil, &response)

	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
}

func TestHTTPClient_Request_Failure(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "bad request"}`))
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	var response map[string]string

	err := client.Request(context.Background(), "POST", "/test-endpoint", nil, map[string]string{"key": "value"}, &response)

	require.Error(t, err)
	assert.Equal(t, "unexpected status code: 400 Bad Request", err.Error())

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.JSONEq(t, `{"error": "bad request"}`, string(statusErr.Body))
}

func TestHTTPClient_Get_EncodesQuery(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/availability", r.URL.Path)
		assert.Equal(t, "2024-08-01", r.URL.Query().Get("date"))
		assert.Equal(t, `["369"]`, r.URL.Query().Get("activityIds"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	var response map[string]bool
	q := url.Values{}
	q.Set("date", "2024-08-01")
	q.Set("activityIds", `["369"]`)

	require.NoError(t, client.Get(context.Background(), "/api/availability", q, &response))
	assert.True(t, response["ok"])
}

func TestHTTPClient_Do_CancelledContext(t *testing.T) {
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer mockServer.Close()

	client := NewHTTPClient(mockServer.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Do(ctx, "GET", "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestHTTPClient_WithRateLimit(t *testing.T) {
	client := NewHTTPClient("http://unused").WithRateLimit(2)
	require.NotNil(t, client.Limiter)
	assert.Equal(t, 2, client.Limiter.Burst())

	unlimited := NewHTTPClient("http://unused").WithRateLimit(0)
	assert.Nil(t, unlimited.Limiter)
}
