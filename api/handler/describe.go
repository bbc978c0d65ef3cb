package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfscan/models"
)

// Describe returns a handler for GET /api/product-description.
func Describe(d ProductDescriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.DescribeRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			msg := err.Error()
			if c.Query("url") == "" {
				msg = "query parameter `url` is required"
			}
			c.JSON(http.StatusBadRequest, models.DescribeResponse{
				URL:    req.URL,
				Format: req.Format,
				Error:  invalidInput(msg),
			})
			return
		}
		req.Defaults()

		description, err := d.Describe(c.Request.Context(), req.URL, req.Format)
		timing := models.TimingInfo{TotalMs: time.Since(start).Milliseconds()}
		if err != nil {
			scrapeErr := toScrapeError(err)
			c.JSON(mapErrorToStatus(scrapeErr), models.DescribeResponse{
				URL:    req.URL,
				Format: req.Format,
				Timing: timing,
				Error:  scrapeErr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.DescribeResponse{
			Success:     true,
			URL:         req.URL,
			Description: description,
			Format:      req.Format,
			Timing:      timing,
		})
	}
}
