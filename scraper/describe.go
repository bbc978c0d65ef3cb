package scraper

import (
	"context"
	"log/slog"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/use-agent/shelfscan/cleaner"
	"github.com/use-agent/shelfscan/config"
	"github.com/use-agent/shelfscan/metrics"
	"github.com/use-agent/shelfscan/models"
)

// Description output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

var (
	descriptionPrimary  = MustSelector("#productDescription")
	descriptionFallback = MustSelector("#feature-bullets ul")
)

// Describer reads the free-text description of a single product page.
type Describer struct {
	launcher Launcher
	fetcher  *PageFetcher
	conv     *converter.Converter
	origin   string
}

// NewDescriber returns a Describer that loads pages once, without retry,
// within cfg.DescribeTimeout.
func NewDescriber(l Launcher, cfg config.ScraperConfig) *Describer {
	return &Describer{
		launcher: l,
		fetcher:  NewPageFetcher(cfg.UserAgent, cfg.DescribeTimeout, RetryPolicy{MaxAttempts: 1}),
		conv:     cleaner.NewMarkdownConverter(),
		origin:   cfg.Origin,
	}
}

// Describe returns the description as plain text. See DescribeFormatted.
func (d *Describer) Describe(ctx context.Context, productURL string) (string, error) {
	return d.DescribeFormatted(ctx, productURL, FormatText)
}

// DescribeFormatted returns the product description region rendered in
// format. The feature-bullet list stands in when the description block is
// missing, and models.NoDescription is returned when both are. A page that
// fails to load or evaluate yields "" with a nil error; only a browser
// launch failure is returned as an error.
func (d *Describer) DescribeFormatted(ctx context.Context, productURL, format string) (string, error) {
	session, err := d.launcher.Launch(ctx)
	if err != nil {
		return "", launchError(err)
	}
	defer closeSession(session)

	rendered, err := d.fetcher.Fetch(ctx, session, productURL)
	if err != nil {
		metrics.Descriptions.WithLabelValues(metrics.DescriptionFailed).Inc()
		slog.Warn("product page failed", "url", productURL, "error", err)
		return "", nil
	}

	doc, err := NewDocument(rendered)
	if err != nil {
		metrics.Descriptions.WithLabelValues(metrics.DescriptionFailed).Inc()
		slog.Warn("product page unparseable", "url", productURL, "error", err)
		return "", nil
	}

	region, source := descriptionRegion(doc)
	metrics.Descriptions.WithLabelValues(source).Inc()
	if region == nil {
		return models.NoDescription, nil
	}

	if format != FormatMarkdown {
		return region.Text(), nil
	}

	fragment, err := region.HTML()
	if err != nil {
		slog.Warn("description render failed", "url", productURL, "error", err)
		return "", nil
	}
	md, err := cleaner.ToMarkdown(d.conv, cleaner.RemoveElements(fragment, cleaner.DescriptionNoise), d.origin)
	if err != nil {
		slog.Warn("description render failed", "url", productURL, "error", err)
		return "", nil
	}
	return md, nil
}

// descriptionRegion picks the description block, falling back to the
// feature bullets. It also returns which one answered, for metrics.
func descriptionRegion(doc Document) (Node, string) {
	if n, ok := doc.Query(descriptionPrimary); ok {
		return n, metrics.DescriptionPrimary
	}
	if n, ok := doc.Query(descriptionFallback); ok {
		return n, metrics.DescriptionFallback
	}
	return nil, metrics.DescriptionMissing
}
