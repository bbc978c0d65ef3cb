package models

// SearchRequest is the query string for GET /api/products.
type SearchRequest struct {
	// Query is the search term. Required.
	Query string `form:"q" binding:"required"`

	// Pages is the maximum number of result pages to walk.
	// Default: 1. Values above the server limit are clamped.
	Pages int `form:"pages" binding:"omitempty,min=1"`
}

// Defaults applies default values to unset fields and clamps Pages to limit.
func (r *SearchRequest) Defaults(limit int) {
	if r.Pages <= 0 {
		r.Pages = 1
	}
	if limit > 0 && r.Pages > limit {
		r.Pages = limit
	}
}

// DescribeRequest is the query string for GET /api/product-description.
type DescribeRequest struct {
	// URL is the product page. Required.
	URL string `form:"url" binding:"required,url"`

	// Format controls how the description block is rendered.
	// Allowed: "text" (default), "markdown".
	Format string `form:"format" binding:"omitempty,oneof=text markdown"`
}

// Defaults applies default values to unset fields.
func (r *DescribeRequest) Defaults() {
	if r.Format == "" {
		r.Format = "text"
	}
}
