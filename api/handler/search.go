package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfscan/models"
)

// Search returns a handler for GET /api/products.
//
// An empty result is reported as 404 with an empty product list; only a
// search that could not start at all is an error response.
func Search(s ProductSearcher, maxPagesLimit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.SearchRequest
		if err := c.ShouldBindQuery(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			msg := "query parameter `q` is required"
			if err != nil && c.Query("q") != "" {
				msg = err.Error()
			}
			c.JSON(http.StatusBadRequest, models.SearchResponse{
				Query:    req.Query,
				Products: []models.Product{},
				Error:    invalidInput(msg),
			})
			return
		}
		req.Defaults(maxPagesLimit)

		products, stats, err := s.Search(c.Request.Context(), req.Query, req.Pages)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			scrapeErr := toScrapeError(err)
			c.JSON(mapErrorToStatus(scrapeErr), models.SearchResponse{
				Message:  "error scraping products",
				Query:    req.Query,
				Products: []models.Product{},
				Timing:   timing,
				Error:    scrapeErr.ToDetail(),
			})
			return
		}

		resp := models.SearchResponse{
			Success:  true,
			Query:    req.Query,
			Products: products,
			Stats:    &stats,
			Timing:   timing,
		}
		if len(products) == 0 {
			resp.Products = []models.Product{}
			resp.Message = "No products found"
			c.JSON(http.StatusNotFound, resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
