package handler

import (
	"context"
	"net/http"

	"github.com/use-agent/shelfscan/models"
	"github.com/use-agent/shelfscan/scraper"
)

// ProductSearcher runs a paginated product search.
type ProductSearcher interface {
	Search(ctx context.Context, query string, maxPages int) ([]models.Product, models.SearchStats, error)
}

// ProductDescriber fetches a product page's description.
type ProductDescriber interface {
	Describe(ctx context.Context, productURL, format string) (string, error)
}

// SessionReporter reports how many browser sessions are open.
type SessionReporter interface {
	ActiveSessions() int64
}

var _ interface {
	ProductSearcher
	ProductDescriber
	SessionReporter
} = (*scraper.Scraper)(nil)

// toScrapeError normalises any error into a ScrapeError.
func toScrapeError(err error) *models.ScrapeError {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}
	return scrapeErr
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeBusy:
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500, including launch failures
	}
}

func invalidInput(msg string) *models.ErrorDetail {
	return &models.ErrorDetail{Code: models.ErrCodeInvalidInput, Message: msg}
}
