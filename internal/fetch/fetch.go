// Package fetch retrieves the catalog feed over HTTP. It classifies failures
// so the CLI can tell a connectivity problem from a bad payload, and it
// retries transient failures with backoff. The engine never retries; that
// policy lives entirely here.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalogctl/internal/model"
)

// ErrKind classifies an acquisition failure.
type ErrKind int

const (
	ErrConnectivity ErrKind = iota // dial/timeout/transport failure
	ErrStatus                      // non-2xx response
	ErrMalformed                   // payload did not parse as a catalog
)

func (k ErrKind) String() string {
	switch k {
	case ErrConnectivity:
		return "connectivity"
	case ErrStatus:
		return "status"
	case ErrMalformed:
		return "malformed"
	}
	return "unknown"
}

// AcquisitionError is any failure while loading the catalog feed.
type AcquisitionError struct {
	Kind   ErrKind
	URL    string
	Status int // HTTP status, when Kind is ErrStatus
	Err    error
}

func (e *AcquisitionError) Error() string {
	if e.Kind == ErrStatus {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s (%s): %v", e.URL, e.Kind, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

const maxPayloadBytes = 32 << 20

// Client fetches catalog feeds.
type Client struct {
	HTTP    *http.Client
	Retries int           // extra attempts after the first, default 2
	Backoff time.Duration // base backoff, doubled per attempt, default 500ms
}

// NewClient returns a client with a 30s request timeout, matching the
// feed's worst observed response times with headroom.
func NewClient() *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Retries: 2,
		Backoff: 500 * time.Millisecond,
	}
}

// Fetch downloads and parses the catalog at url. Connectivity errors and
// 5xx responses are retried with backoff; 4xx responses and malformed
// payloads are not, because repeating them cannot help.
func (c *Client) Fetch(ctx context.Context, url string) (*model.Catalog, error) {
	attempts := c.Retries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := c.Backoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, &AcquisitionError{Kind: ErrConnectivity, URL: url, Err: ctx.Err()}
			}
		}

		cat, err := c.fetchOnce(ctx, url)
		if err == nil {
			return cat, nil
		}
		lastErr = err

		var aerr *AcquisitionError
		if errors.As(err, &aerr) && !retryable(aerr) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) (*model.Catalog, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &AcquisitionError{Kind: ErrConnectivity, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &AcquisitionError{Kind: ErrConnectivity, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &AcquisitionError{Kind: ErrStatus, URL: url, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, &AcquisitionError{Kind: ErrConnectivity, URL: url, Err: err}
	}

	cat, err := model.ParseCatalog(data)
	if err != nil {
		return nil, &AcquisitionError{Kind: ErrMalformed, URL: url, Err: err}
	}
	return cat, nil
}

func retryable(e *AcquisitionError) bool {
	switch e.Kind {
	case ErrConnectivity:
		return true
	case ErrStatus:
		return e.Status >= 500
	}
	return false
}
