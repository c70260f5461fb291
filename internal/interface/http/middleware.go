package http

import (
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/ciderworks/internal/infra/config"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestId"
)

// requestIDMiddleware propagates or mints a request id for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		attrs := []any{
			"code", httpErr.Code,
			"status", httpErr.Status,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"requestId", c.GetString(requestIDKey),
			"error", httpErr.Err,
		}
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Warn("request rejected", attrs...)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":      httpErr.Code,
				"message":   message,
				"requestId": c.GetString(requestIDKey),
			},
		})
	}
}

func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newClientLimiter(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.allow(ip) {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		c.Header("Retry-After", "60")
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

// clientLimiter is a token bucket per client IP, refilled per minute.
type clientLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	perMinute   float64
	capacity    float64
	idleTTL     time.Duration
	now         func() time.Time
	lastCleanup time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newClientLimiter(cfg config.RateLimitConfig, now func() time.Time) *clientLimiter {
	capacity := float64(cfg.Burst)
	if capacity <= 0 {
		capacity = 1
	}
	return &clientLimiter{
		buckets:   make(map[string]*bucket),
		perMinute: float64(cfg.RequestsPerMinute),
		capacity:  capacity,
		idleTTL:   5 * time.Minute,
		now:       now,
	}
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[key] = b
	} else if elapsed := now.Sub(b.lastSeen).Minutes(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perMinute)
		b.lastSeen = now
	}
	if now.Sub(l.lastCleanup) > l.idleTTL {
		l.evictIdleLocked(now)
		l.lastCleanup = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *clientLimiter) evictIdleLocked(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}
