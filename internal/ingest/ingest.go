// Package ingest provides adapters for the external data sources. Each
// adapter returns a finite, already-materialized slice of records; an empty
// slice means "nothing new", never an error signal.
package ingest

import (
	"fmt"
	"io"
	"net/http"
	"time"

	perrors "crypto-pulse/internal/errors"
)

// defaultHTTPClient is shared by the HTTP-based adapters.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// drainAndClose fully reads and closes a response body so the underlying
// connection can be reused.
func drainAndClose(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}

// checkStatus converts a non-2xx response into an error. A 429 is marked
// with ErrRateLimited so callers can tell throttling from hard failures.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", perrors.ErrRateLimited, resp.Status)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
