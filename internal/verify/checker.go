// Package verify implements the batch link-verification job: one work unit
// per stored lead, outcome written back onto the lead record.
package verify

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Checker performs the HTTP probe for a single lead URL.
type Checker struct {
	client    *http.Client
	userAgent string
}

func NewChecker(timeout time.Duration, userAgent string) *Checker {
	return &Checker{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Check fetches the URL and returns the final HTTP status after redirects.
// A non-nil error means the probe itself failed (DNS, timeout, TLS), not
// that the link is broken.
func (c *Checker) Check(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain a little so keep-alive connections get reused.
	_, _ = io.CopyN(io.Discard, resp.Body, 4096)

	return resp.StatusCode, nil
}
