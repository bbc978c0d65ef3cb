package models

// NoDescription is returned by a description lookup when the page has
// neither a description block nor a feature-bullet list. It is a normal
// result, not an error.
const NoDescription = "no description available"

// Product is one search result. Title, Price and ImageURL are always
// non-empty; Link is empty when the result carried no anchor.
type Product struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	ImageURL string `json:"image"`
	Link     string `json:"link,omitempty"`
}

// ExtractionStats counts result containers seen on a page against the
// products accepted from them. A growing gap between the two is the only
// signal that the site's markup has drifted.
type ExtractionStats struct {
	ContainersSeen int `json:"containers_seen"`
	Accepted       int `json:"accepted"`
}

// Add accumulates another page's counters.
func (s *ExtractionStats) Add(o ExtractionStats) {
	s.ContainersSeen += o.ContainersSeen
	s.Accepted += o.Accepted
}

// StopReason records why pagination ended.
type StopReason string

const (
	// StopExhausted means a page produced no products.
	StopExhausted StopReason = "exhausted"

	// StopMaxPages means the caller's page bound was reached.
	StopMaxPages StopReason = "exhausted_max_pages"

	// StopCanceled means the caller's context ended between pages.
	StopCanceled StopReason = "canceled"
)

// SearchStats summarises one paginated search.
type SearchStats struct {
	PagesFetched int             `json:"pages_fetched"`
	StopReason   StopReason      `json:"stop_reason"`
	Extraction   ExtractionStats `json:"extraction"`
}
