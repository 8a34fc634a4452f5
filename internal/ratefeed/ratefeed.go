// Package ratefeed fetches treasury reference rates. Fetching is impure and
// may differ between runs; Transform is pure and turns any response with the
// same body into byte-identical output.
package ratefeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sentinel causes for a failed ingestion.
var (
	ErrRequest   = errors.New("treasury request failed")
	ErrStatus    = errors.New("treasury API returned a non-2xx status")
	ErrMalformed = errors.New("treasury response is malformed")
)

const (
	userAgent    = "ustbills-ratefeed/1.0"
	maxBodyBytes = 4 << 20
)

// Response is a raw HTTP response as seen by the ledger.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Client issues a single GET against the treasury rate endpoint.
type Client struct {
	httpClient *http.Client
	url        string // overridable for tests
}

// NewClient creates a Client that gives up after timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
	}
}

// Fetch performs the outbound request. Network failures and timeouts are
// reported as ErrRequest; the status code is not judged here.
func (c *Client) Fetch(ctx context.Context) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrRequest, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrRequest, err)
	}

	return &Response{
		Status:  resp.StatusCode,
		Headers: resp.Header.Clone(),
		Body:    body,
	}, nil
}
