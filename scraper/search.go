package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/shelfscan/config"
	"github.com/use-agent/shelfscan/metrics"
	"github.com/use-agent/shelfscan/models"
	"github.com/use-agent/shelfscan/simhash"
)

// duplicateThreshold is the SimHash distance at or below which two
// consecutive pages are reported as repeats.
const duplicateThreshold = 3

// SearchURL builds the results URL for one page of a query.
func SearchURL(origin, query string, page int) string {
	q := strings.ReplaceAll(url.QueryEscape(query), "+", "%20")
	return fmt.Sprintf("%s/s?k=%s&page=%d", strings.TrimRight(origin, "/"), q, page)
}

// Searcher walks result pages for a query until a page comes back empty or
// the page bound is reached. Pages are fetched strictly one after another.
type Searcher struct {
	launcher  Launcher
	fetcher   *PageFetcher
	extractor *Extractor
	origin    string
	pageDelay time.Duration

	// sleep is the politeness wait between pages.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSearcher wires a Searcher from its collaborators. cfg supplies the
// origin and the delay between pages.
func NewSearcher(l Launcher, f *PageFetcher, e *Extractor, cfg config.ScraperConfig) *Searcher {
	return &Searcher{
		launcher:  l,
		fetcher:   f,
		extractor: e,
		origin:    cfg.Origin,
		pageDelay: cfg.PageDelay,
		sleep:     sleepCtx,
	}
}

// Search returns the products of pages 1..maxPages in page order. Only a
// failure to start the browser is returned as an error; a page that cannot
// be loaded ends the walk the same way an empty page does.
func (s *Searcher) Search(ctx context.Context, query string, maxPages int) ([]models.Product, error) {
	products, _, err := s.SearchWithStats(ctx, query, maxPages)
	return products, err
}

// SearchWithStats is Search plus counters describing how the walk went.
// maxPages below 1 is treated as 1. The returned slice is never nil.
func (s *Searcher) SearchWithStats(ctx context.Context, query string, maxPages int) ([]models.Product, models.SearchStats, error) {
	var stats models.SearchStats
	if maxPages < 1 {
		maxPages = 1
	}

	session, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, stats, launchError(err)
	}
	defer closeSession(session)

	products := make([]models.Product, 0)
	var prevFP uint64

	for page := 1; page <= maxPages; page++ {
		pageURL := SearchURL(s.origin, query, page)
		slog.Debug("search state", "state", "FETCHING", "query", query, "page", page)

		found, pageStats := s.harvest(ctx, session, pageURL)
		stats.PagesFetched = page
		stats.Extraction.Add(pageStats)

		if len(found) == 0 {
			stats.StopReason = models.StopExhausted
			if ctx.Err() != nil {
				stats.StopReason = models.StopCanceled
			}
			slog.Debug("search state", "state", "STOPPED", "reason", stats.StopReason, "query", query, "page", page)
			return products, stats, nil
		}

		products = append(products, found...)
		slog.Debug("search state",
			"state", "ACCUMULATING",
			"query", query,
			"page", page,
			"accepted", len(found),
			"total", len(products),
		)

		fp := simhash.FingerprintTitles(titles(found))
		if page > 1 && simhash.Similar(prevFP, fp, duplicateThreshold) {
			slog.Warn("result page repeats the previous one",
				"query", query,
				"page", page,
				"distance", simhash.Distance(prevFP, fp),
			)
		}
		prevFP = fp

		if page == maxPages {
			break
		}
		if err := s.sleep(ctx, s.pageDelay); err != nil {
			stats.StopReason = models.StopCanceled
			slog.Debug("search state", "state", "STOPPED", "reason", stats.StopReason, "query", query, "page", page)
			return products, stats, nil
		}
	}

	stats.StopReason = models.StopMaxPages
	slog.Debug("search state", "state", "STOPPED", "reason", stats.StopReason, "query", query, "page", stats.PagesFetched)
	return products, stats, nil
}

// harvest loads one results page and extracts its products. Failures are
// logged and reported as an empty page.
func (s *Searcher) harvest(ctx context.Context, session Session, pageURL string) ([]models.Product, models.ExtractionStats) {
	rendered, err := s.fetcher.Fetch(ctx, session, pageURL)
	if err != nil {
		metrics.PagesFetched.WithLabelValues(metrics.PageFailed).Inc()
		slog.Warn("results page failed, treating as empty", "url", pageURL, "error", err)
		return nil, models.ExtractionStats{}
	}

	doc, err := NewDocument(rendered)
	if err != nil {
		metrics.PagesFetched.WithLabelValues(metrics.PageFailed).Inc()
		slog.Warn("results page unparseable, treating as empty", "url", pageURL, "error", err)
		return nil, models.ExtractionStats{}
	}

	products, stats := s.extractor.Extract(doc)
	if len(products) == 0 {
		metrics.PagesFetched.WithLabelValues(metrics.PageEmpty).Inc()
	} else {
		metrics.PagesFetched.WithLabelValues(metrics.PageOK).Inc()
	}
	return products, stats
}

func titles(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

// launchError makes sure a launch failure carries the launch error code.
func launchError(err error) error {
	if se, ok := err.(*models.ScrapeError); ok {
		return se
	}
	return models.NewScrapeError(models.ErrCodeLaunch, "failed to launch browser", err)
}

// closeSession releases a session, logging instead of failing.
func closeSession(s Session) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		slog.Debug("session close failed", "error", err)
	}
}
