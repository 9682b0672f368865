// Package twitter resolves numeric Twitter account IDs to their current
// handles by scraping the public user intent page. No authentication, no
// side effects beyond outbound reads.
package twitter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/birdsync/birdsync/archive"
	log "github.com/birdsync/birdsync/conf"
)

type Status string

const (
	StatusResolved      Status = "resolved"
	StatusNotFound      Status = "not_found"
	StatusSuspended     Status = "suspended"
	StatusAmbiguousPage Status = "ambiguous_page"
)

// ResolvedAccount pairs a follow record with its resolution outcome.
type ResolvedAccount struct {
	Record     archive.FollowRecord
	Handle     string
	Status     Status
	Diagnostic string
}

type Resolver struct {
	client     *http.Client
	extract    Extractor
	log        *log.Log
	intentURL  string
	maxRetries int
	baseWait   time.Duration
}

func NewResolver() *Resolver {
	cfg := NewConf()
	return &Resolver{
		client:     &http.Client{Timeout: cfg.HTTPTimeout()},
		extract:    NewIntentPageExtractor(),
		log:        log.NewLog(),
		intentURL:  cfg.IntentURL(),
		maxRetries: cfg.MaxRetries(),
		baseWait:   time.Second, // linear: 1s, 2s, 3s
	}
}

// WithHTTPClient overrides the transport, mainly for tests.
func (r *Resolver) WithHTTPClient(client *http.Client) *Resolver {
	r.client = client
	return r
}

// WithExtractor swaps the markup extraction seam.
func (r *Resolver) WithExtractor(extract Extractor) *Resolver {
	r.extract = extract
	return r
}

// Resolve fetches the intent page for the record's account ID and
// classifies the outcome. Transport failures are retried with linear
// backoff; exhaustion downgrades to NotFound with the diagnostic attached
// so the batch keeps going.
func (r *Resolver) Resolve(ctx context.Context, record archive.FollowRecord) ResolvedAccount {
	resolved := ResolvedAccount{Record: record}

	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * r.baseWait
			r.log.With("action", "retry", "account-id", record.AccountID, "wait", wait, "attempt", attempt, "max-retry", r.maxRetries).
				Warn("Retrying profile page fetch")
			select {
			case <-ctx.Done():
				resolved.Status = StatusNotFound
				resolved.Diagnostic = ctx.Err().Error()
				return resolved
			case <-time.After(wait):
			}
		}

		done, err := r.fetch(ctx, record.AccountID, &resolved)
		if done {
			return resolved
		}
		lastErr = err
	}

	resolved.Status = StatusNotFound
	resolved.Diagnostic = fmt.Sprintf("fetch failed after %d retries: %v", r.maxRetries, lastErr)
	return resolved
}

// fetch performs one GET. It reports done=true when the response was
// conclusive; transport and upstream 5xx errors come back for retry.
func (r *Resolver) fetch(ctx context.Context, accountID string, resolved *ResolvedAccount) (bool, error) {
	url := fmt.Sprintf(r.intentURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", "birdsync/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resolved.Status = StatusNotFound
		return true, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return false, fmt.Errorf("profile page returned %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		resolved.Status = StatusAmbiguousPage
		resolved.Diagnostic = fmt.Sprintf("profile page returned %s", resp.Status)
		return true, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, err
	}

	if suspended(body) {
		resolved.Status = StatusSuspended
		return true, nil
	}

	handle, err := r.extract.Extract(bytes.NewReader(body))
	if err != nil {
		resolved.Status = StatusAmbiguousPage
		resolved.Diagnostic = err.Error()
		return true, nil
	}

	resolved.Status = StatusResolved
	resolved.Handle = handle
	return true, nil
}

func suspended(body []byte) bool {
	page := strings.ToLower(string(body))
	return strings.Contains(page, "account suspended") ||
		strings.Contains(page, "account has been suspended") ||
		strings.Contains(page, "account is deactivated")
}
