package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/shelfscan/models"
	"golang.org/x/sync/semaphore"
)

// SessionLimiter bounds how many browser-backed requests run at once.
// Each search or describe call starts its own Chromium process.
type SessionLimiter struct {
	sem     *semaphore.Weighted
	max     int64
	wait    time.Duration
	waiting atomic.Int64
}

// NewSessionLimiter allows max concurrent requests; others queue for up to
// wait before being rejected. max below 1 is treated as 1.
func NewSessionLimiter(max int64, wait time.Duration) *SessionLimiter {
	if max < 1 {
		max = 1
	}
	return &SessionLimiter{sem: semaphore.NewWeighted(max), max: max, wait: wait}
}

// Max is the configured session limit.
func (l *SessionLimiter) Max() int64 { return l.max }

// Waiting is the number of requests currently queued for a session.
func (l *SessionLimiter) Waiting() int64 { return l.waiting.Load() }

// Middleware holds a slot for the whole request.
func (l *SessionLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cancel context.CancelFunc
		if l.wait > 0 {
			ctx, cancel = context.WithTimeout(ctx, l.wait)
		} else {
			ctx, cancel = context.WithCancel(ctx)
		}

		l.waiting.Add(1)
		err := l.sem.Acquire(ctx, 1)
		l.waiting.Add(-1)
		cancel()

		if err != nil {
			slog.Warn("no browser session available", "path", c.FullPath(), "wait", l.wait)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeBusy,
					Message: "all browser sessions are busy, retry later",
				},
			})
			return
		}
		defer l.sem.Release(1)

		c.Next()
	}
}
