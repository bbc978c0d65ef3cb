package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/use-agent/shelfscan/config"
	"github.com/use-agent/shelfscan/metrics"
	"github.com/use-agent/shelfscan/models"
)

// Scraper is the entry point used by the HTTP, CLI and MCP front ends. It
// owns no browser itself: every Search and Describe call launches its own
// session and releases it before returning, so concurrent calls never
// share state. It is safe for concurrent use.
type Scraper struct {
	searcher  *Searcher
	describer *Describer
	launcher  *trackedLauncher
}

// NewScraper builds a Scraper that launches Chromium via go-rod.
func NewScraper(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig) *Scraper {
	return New(NewRodLauncher(browserCfg, scraperCfg.IdleWindow), scraperCfg)
}

// New builds a Scraper on top of an arbitrary Launcher.
func New(l Launcher, cfg config.ScraperConfig) *Scraper {
	tl := &trackedLauncher{inner: l}

	retry := RetryPolicy{MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.BaseDelay}
	fetcher := NewPageFetcher(cfg.UserAgent, cfg.NavigationTimeout, retry)

	return &Scraper{
		searcher:  NewSearcher(tl, fetcher, NewExtractor(cfg.Origin), cfg),
		describer: NewDescriber(tl, cfg),
		launcher:  tl,
	}
}

// Search walks up to maxPages result pages for query.
func (s *Scraper) Search(ctx context.Context, query string, maxPages int) ([]models.Product, models.SearchStats, error) {
	return s.searcher.SearchWithStats(ctx, query, maxPages)
}

// Describe returns a product page's description in the given format
// ("text" or "markdown").
func (s *Scraper) Describe(ctx context.Context, productURL, format string) (string, error) {
	return s.describer.DescribeFormatted(ctx, productURL, format)
}

// ActiveSessions reports how many browser sessions are currently open.
func (s *Scraper) ActiveSessions() int64 {
	return s.launcher.active.Load()
}

// trackedLauncher counts open sessions for health reporting and metrics.
type trackedLauncher struct {
	inner  Launcher
	active atomic.Int64
}

func (t *trackedLauncher) Launch(ctx context.Context) (Session, error) {
	s, err := t.inner.Launch(ctx)
	if err != nil {
		return nil, err
	}
	n := t.active.Add(1)
	metrics.SessionsActive.Inc()
	slog.Debug("session acquired", "active", n)
	return &trackedSession{Session: s, owner: t}, nil
}

type trackedSession struct {
	Session
	owner    *trackedLauncher
	released atomic.Bool
}

func (s *trackedSession) Close() error {
	err := s.Session.Close()
	if s.released.CompareAndSwap(false, true) {
		n := s.owner.active.Add(-1)
		metrics.SessionsActive.Dec()
		slog.Debug("session released", "active", n)
	}
	return err
}
