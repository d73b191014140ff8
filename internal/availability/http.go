package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPChecker queries an external availability service over HTTP. The
// service receives a JSON batch of lawyer IDs and answers with a partial
// availability map; IDs the service does not know stay absent.
type HTTPChecker struct {
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker for the given endpoint URL. The client
// carries no timeout of its own; the ranking engine bounds each attempt via
// context.
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		url: url,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// checkRequest is the wire format sent to the availability service.
type checkRequest struct {
	LawyerIDs []string `json:"lawyer_ids"`
}

// checkResponse is the wire format returned by the availability service.
type checkResponse struct {
	Available map[string]bool `json:"available"`
}

// CheckAvailability posts the ID batch and decodes the availability map.
// Transport failures and non-200 responses wrap ErrUnavailable so the
// caller's retry-then-degrade policy applies.
func (c *HTTPChecker) CheckAvailability(ctx context.Context, lawyerIDs []string) (map[string]bool, error) {
	body, err := json.Marshal(checkRequest{LawyerIDs: lawyerIDs})
	if err != nil {
		return nil, fmt.Errorf("availability request encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("availability request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var decoded checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}
	return decoded.Available, nil
}
