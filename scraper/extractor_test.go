package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/shelfscan/models"
)

func extract(t *testing.T, pageURL, body string) ([]models.Product, models.ExtractionStats) {
	t.Helper()
	doc, err := NewDocument(&RenderedPage{URL: pageURL, HTML: body})
	require.NoError(t, err)
	return NewExtractor(testOrigin).Extract(doc)
}

func TestAbsolutize(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"site relative", "/dp/XYZ", testOrigin + "/dp/XYZ"},
		{"site relative with query", "/dp/XYZ?ref=sr_1_1&keywords=mouse", testOrigin + "/dp/XYZ?ref=sr_1_1&keywords=mouse"},
		{"absolute", "https://other.test/dp/XYZ", "https://other.test/dp/XYZ"},
		{"protocol relative", "//cdn.test/dp/XYZ", "https://cdn.test/dp/XYZ"},
		{"bare relative", "dp/XYZ", testOrigin + "/dp/XYZ"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, absolutize(testOrigin, tt.href))
		})
	}
}

func TestExtract_RequiresTitlePriceImage(t *testing.T) {
	body := resultsPage(
		item{title: "No image", price: "10", href: "/dp/1"},
		item{price: "20", image: "https://img.test/2.jpg", href: "/dp/2"},
		item{title: "No price", image: "https://img.test/3.jpg", href: "/dp/3"},
		item{title: "Complete", price: "40", image: "https://img.test/4.jpg", href: "/dp/4"},
	)

	products, stats := extract(t, SearchURL(testOrigin, "x", 1), body)

	require.Len(t, products, 1)
	assert.Equal(t, "Complete", products[0].Title)
	assert.Equal(t, models.ExtractionStats{ContainersSeen: 4, Accepted: 1}, stats)
	for _, p := range products {
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.Price)
		assert.NotEmpty(t, p.ImageURL)
	}
}

func TestExtract_WhitespaceOnlyFieldsAreMissing(t *testing.T) {
	body := resultsPage(
		item{title: "   ", price: "10", image: "https://img.test/1.jpg", href: "/dp/1"},
		item{title: "Mouse", price: "\n\t", image: "https://img.test/2.jpg", href: "/dp/2"},
	)

	products, stats := extract(t, SearchURL(testOrigin, "x", 1), body)

	assert.Empty(t, products)
	assert.Equal(t, 2, stats.ContainersSeen)
}

func TestExtract_MissingLinkTolerated(t *testing.T) {
	body := resultsPage(item{title: "Unlinked", price: "99", image: "https://img.test/u.jpg"})

	products, _ := extract(t, SearchURL(testOrigin, "x", 1), body)

	require.Len(t, products, 1)
	assert.Empty(t, products[0].Link)
}

func TestExtract_ResolvesRelativeImage(t *testing.T) {
	body := resultsPage(item{title: "Mouse", price: "99", image: "/images/I/mouse.jpg", href: "/dp/M"})

	products, _ := extract(t, SearchURL(testOrigin, "mouse", 1), body)

	require.Len(t, products, 1)
	assert.Equal(t, testOrigin+"/images/I/mouse.jpg", products[0].ImageURL)
}

func TestExtract_NormalizesText(t *testing.T) {
	body := `<html><body><div class="s-main-slot">
		<div class="s-result-item">
			<h2>
				<a href="/dp/N"><span>Silent   Wireless</span>
				<span>Mouse</span></a>
			</h2>
			<span class="a-price-whole">  1,299 </span>
			<img class="s-image" src="https://img.test/n.jpg">
		</div>
	</div></body></html>`

	products, _ := extract(t, SearchURL(testOrigin, "x", 1), body)

	require.Len(t, products, 1)
	assert.Equal(t, "Silent Wireless Mouse", products[0].Title)
	assert.Equal(t, "1,299", products[0].Price)
	assert.Equal(t, testOrigin+"/dp/N", products[0].Link)
}

func TestExtract_IgnoresItemsOutsideMainSlot(t *testing.T) {
	body := `<html><body>
		<div class="s-result-item"><h2>Sponsored</h2><span class="a-price-whole">1</span><img class="s-image" src="https://img.test/s.jpg"></div>
		<div class="s-main-slot">` +
		resultItem(item{title: "Inside", price: "2", image: "https://img.test/i.jpg", href: "/dp/I"}) +
		`</div></body></html>`

	products, stats := extract(t, SearchURL(testOrigin, "x", 1), body)

	require.Len(t, products, 1)
	assert.Equal(t, "Inside", products[0].Title)
	assert.Equal(t, 1, stats.ContainersSeen)
}

func TestExtract_NoContainers(t *testing.T) {
	products, stats := extract(t, SearchURL(testOrigin, "x", 1), "<html><body><p>Try checking your spelling</p></body></html>")

	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Zero(t, stats.ContainersSeen)
}
