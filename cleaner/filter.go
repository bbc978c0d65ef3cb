package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DescriptionNoise matches widgets that sit inside product description
// regions but carry no description text.
var DescriptionNoise = []string{
	"script",
	"style",
	"noscript",
	"button",
	".a-expander-prompt",
	".aok-hidden",
}

// RemoveElements deletes every element matching one of selectors from an
// HTML fragment and returns the remaining markup. A fragment that cannot
// be parsed is returned unchanged.
func RemoveElements(fragment string, selectors []string) string {
	if len(selectors) == 0 {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	for _, selector := range selectors {
		doc.Find(selector).Remove()
	}

	// The parser wraps fragments in html/body; keep only body content.
	result, err := doc.Find("body").Html()
	if err != nil {
		return fragment
	}
	return result
}
