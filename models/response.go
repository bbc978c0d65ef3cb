package models

// SearchResponse is the response for GET /api/products.
type SearchResponse struct {
	// Success is false only when the search could not run at all.
	Success bool `json:"success"`

	// Message is a human-readable summary, set for empty results and errors.
	Message string `json:"message,omitempty"`

	Query    string    `json:"query"`
	Products []Product `json:"products"`

	// Stats exposes pagination and extraction counters for the call.
	Stats *SearchStats `json:"stats,omitempty"`

	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// DescribeResponse is the response for GET /api/product-description.
type DescribeResponse struct {
	Success     bool         `json:"success"`
	URL         string       `json:"url"`
	Description string       `json:"description"`
	Format      string       `json:"format"`
	Timing      TimingInfo   `json:"timing"`
	Error       *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent serving a request.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status   string       `json:"status"` // "healthy" or "degraded"
	Uptime   string       `json:"uptime"`
	Sessions SessionStats `json:"sessions"`
	Version  string       `json:"version"`
}

// SessionStats reports browser-session utilisation.
type SessionStats struct {
	MaxSessions    int64 `json:"max_sessions"`
	ActiveSessions int64 `json:"active_sessions"`

	// Waiting counts requests queued for a free session.
	Waiting int64 `json:"waiting"`
}

// ErrorResponse is the body of requests rejected before reaching a handler.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}
