package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfscan/models"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// SessionQueue reports the request-side session limit.
type SessionQueue interface {
	Max() int64
	Waiting() int64
}

// Health returns a handler for GET /health.
//
// Status degrades once every session slot is in use or requests are
// queueing for one.
func Health(sr SessionReporter, q SessionQueue, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := models.SessionStats{
			MaxSessions:    q.Max(),
			ActiveSessions: sr.ActiveSessions(),
			Waiting:        q.Waiting(),
		}

		status := "healthy"
		if stats.Waiting > 0 || (stats.MaxSessions > 0 && stats.ActiveSessions >= stats.MaxSessions) {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:   status,
			Uptime:   time.Since(startTime).Round(time.Second).String(),
			Sessions: stats,
			Version:  Version,
		})
	}
}
