package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/use-agent/shelfscan/metrics"
)

// PageFetcher lands a session on a URL and returns the settled DOM. It does
// not look at page content.
type PageFetcher struct {
	userAgent string
	timeout   time.Duration
	retry     RetryPolicy
}

// NewPageFetcher returns a fetcher that navigates with the given user agent,
// bounding each navigation attempt by timeout and retrying per retry.
func NewPageFetcher(userAgent string, timeout time.Duration, retry RetryPolicy) *PageFetcher {
	return &PageFetcher{userAgent: userAgent, timeout: timeout, retry: retry}
}

// Fetch configures the session's page, navigates to url under the retry
// policy and snapshots the result. After retries are exhausted the error is
// returned as a *models.ScrapeError.
func (f *PageFetcher) Fetch(ctx context.Context, s Session, url string) (*RenderedPage, error) {
	if err := s.Configure(ctx, f.userAgent); err != nil {
		return nil, categorizeError(err, "failed to configure page")
	}

	policy := f.retry
	if policy.OnAttemptFailed == nil {
		policy.OnAttemptFailed = func(attempt int, err error) {
			metrics.NavigationFailures.Inc()
			slog.Warn("navigation attempt failed",
				"url", url,
				"attempt", attempt,
				"error", err,
			)
		}
	}

	_, err := RunWithRetry(ctx, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Navigate(ctx, url, f.timeout)
	})
	if err != nil {
		return nil, categorizeError(err, "navigation to target URL failed")
	}

	page, err := s.Snapshot(ctx)
	if err != nil {
		return nil, categorizeError(err, "failed to extract page HTML")
	}
	if page.URL == "" {
		page.URL = url
	}
	return page, nil
}
