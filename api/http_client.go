// api/http_client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return "unexpected status code: " + e.Status
}

// HTTPClient struct to hold base URL and HTTP client configuration
type HTTPClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

// NewHTTPClient creates a new instance of HTTPClient with default settings
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithTimeout replaces the per-request timeout.
func (c *HTTPClient) WithTimeout(timeout time.Duration) *HTTPClient {
	c.HTTPClient.Timeout = timeout
	return c
}

// WithRateLimit caps outgoing requests per second. Callers block in Do until
// a token is available or their context ends.
func (c *HTTPClient) WithRateLimit(perSecond float64) *HTTPClient {
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return c
}

// Do sends a raw request and returns the response body.
func (c *HTTPClient) Do(ctx context.Context, method, endpoint string, headers map[string]string, body io.Reader) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return resBody, &StatusError{StatusCode: res.StatusCode, Status: res.Status, Body: resBody}
	}
	return resBody, nil
}

// Request makes a JSON request to the API and decodes the response
func (c *HTTPClient) Request(ctx context.Context, method, endpoint string, headers map[string]string, body interface{}, response interface{}) error {
	var requestBody []byte
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		requestBody = jsonBody
	}

	h := map[string]string{"Content-Type": "application/json"}
	for k, v := range headers {
		h[k] = v
	}

	resBody, err := c.Do(ctx, method, endpoint, h, bytes.NewReader(requestBody))
	if err != nil {
		return err
	}

	if response != nil {
		if err := json.Unmarshal(resBody, response); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return nil
}

// Get issues a JSON GET with query parameters.
func (c *HTTPClient) Get(ctx context.Context, endpoint string, query url.Values, response interface{}) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.Request(ctx, http.MethodGet, endpoint, nil, nil, response)
}
