package scraper

import (
	"net/url"
	"strings"

	"github.com/use-agent/shelfscan/metrics"
	"github.com/use-agent/shelfscan/models"
)

// Selectors locates product fields in a search results page. These are the
// most site-coupled values in the engine; when the site changes its markup,
// extraction quietly yields nothing.
type Selectors struct {
	Container Selector
	Title     Selector
	Price     Selector
	Image     Selector

	// Link is matched inside the title element, not the container.
	Link Selector
}

var defaultSelectors = Selectors{
	Container: MustSelector(".s-main-slot .s-result-item"),
	Title:     MustSelector("h2"),
	Price:     MustSelector(".a-price-whole"),
	Image:     MustSelector(".s-image"),
	Link:      MustSelector("a"),
}

// DefaultSelectors returns the selector set for the search results layout.
func DefaultSelectors() Selectors {
	return defaultSelectors
}

// Extractor maps result containers to products. It performs no I/O.
type Extractor struct {
	origin string
	sel    Selectors
}

// NewExtractor returns an extractor that prefixes site-relative links with
// origin.
func NewExtractor(origin string) *Extractor {
	return &Extractor{origin: strings.TrimRight(origin, "/"), sel: DefaultSelectors()}
}

// Extract returns the complete products found in doc, in document order.
// Containers missing a title, price or image are dropped without error;
// the returned stats are the only trace of them.
func (e *Extractor) Extract(doc Document) ([]models.Product, models.ExtractionStats) {
	containers := doc.QueryAll(e.sel.Container)
	stats := models.ExtractionStats{ContainersSeen: len(containers)}

	products := make([]models.Product, 0, len(containers))
	for _, c := range containers {
		if p, ok := e.candidate(doc.URL(), c); ok {
			products = append(products, p)
		}
	}
	stats.Accepted = len(products)

	metrics.ContainersSeen.Add(float64(stats.ContainersSeen))
	metrics.ProductsAccepted.Add(float64(stats.Accepted))
	return products, stats
}

func (e *Extractor) candidate(pageURL string, c Node) (models.Product, bool) {
	var p models.Product

	title, hasTitle := c.Query(e.sel.Title)
	if hasTitle {
		p.Title = title.Text()
		if a, ok := title.Query(e.sel.Link); ok {
			if href, ok := a.Attr("href"); ok {
				p.Link = absolutize(e.origin, href)
			}
		}
	}
	if price, ok := c.Query(e.sel.Price); ok {
		p.Price = price.Text()
	}
	if img, ok := c.Query(e.sel.Image); ok {
		if src, ok := img.Attr("src"); ok {
			p.ImageURL = resolve(pageURL, src)
		}
	}

	if p.Title == "" || p.Price == "" || p.ImageURL == "" {
		return models.Product{}, false
	}
	return p, true
}

// absolutize prefixes a site-relative href with origin and leaves absolute
// URLs alone.
func absolutize(origin, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return resolve(origin, href)
	case strings.HasPrefix(href, "/"):
		return origin + href
	}
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		return href
	}
	return origin + "/" + href
}

// resolve interprets ref relative to base, the way a browser resolves an
// element's src property.
func resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ref
	}
	return b.ResolveReference(r).String()
}
