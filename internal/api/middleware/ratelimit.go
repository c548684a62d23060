package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/safient/safient-escrow/internal/adapter"
	apierrors "github.com/safient/safient-escrow/internal/api/shared/errors"
	"github.com/safient/safient-escrow/internal/logger"
)

const (
	RATE_LIMIT_KEY_PREFIX = "ratelimit:"
	// Local limiters idle for longer than this are dropped
	LOCAL_LIMITER_TTL = 10 * time.Minute
)

// RateLimitConfig holds per-client rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
	KeyPrefix         string
}

// RateLimiter limits requests per client IP.
// It uses the distributed limiter when one is given and falls back to
// in-process token buckets when there is none or Redis errors.
type RateLimiter struct {
	config      RateLimitConfig
	distributed adapter.RedisRateLimiter
	clock       adapter.Clock

	mu    sync.Mutex
	local map[string]*localLimiter
}

type localLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter. distributed may be nil.
func NewRateLimiter(cfg RateLimitConfig, distributed adapter.RedisRateLimiter, clock adapter.Clock) *RateLimiter {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &RateLimiter{
		config:      cfg,
		distributed: distributed,
		clock:       clock,
		local:       make(map[string]*localLimiter),
	}
}

// Middleware returns the gin middleware enforcing the limit
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := r.Allow(c.Request.Context(), c.ClientIP())
		if allowed {
			c.Next()
			return
		}

		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		}
		logger.WarnCtx(c.Request.Context(), "Rate limit exceeded",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		apiErr := apierrors.NewRateLimitedError("Too many requests", fmt.Sprintf("limit is %d requests per minute", r.config.RequestsPerMinute))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apiErr.Envelope())
	}
}

// Allow consumes one request from the client's budget
func (r *RateLimiter) Allow(ctx context.Context, clientKey string) (bool, time.Duration) {
	if r.distributed != nil {
		res, err := r.distributed.Allow(ctx, r.config.KeyPrefix+RATE_LIMIT_KEY_PREFIX+clientKey, redis_rate.Limit{
			Rate:   r.config.RequestsPerMinute,
			Burst:  r.config.Burst,
			Period: time.Minute,
		})
		if err == nil {
			return res.Allowed > 0, res.RetryAfter
		}
		logger.WarnCtx(ctx, "Distributed rate limiter unavailable, using local limiter", zap.Error(err))
	}

	return r.allowLocal(clientKey)
}

func (r *RateLimiter) allowLocal(clientKey string) (bool, time.Duration) {
	now := r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, l := range r.local {
		if now.Sub(l.lastSeen) > LOCAL_LIMITER_TTL {
			delete(r.local, key)
		}
	}

	l, ok := r.local[clientKey]
	if !ok {
		l = &localLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(r.config.RequestsPerMinute)), r.config.Burst),
		}
		r.local[clientKey] = l
	}
	l.lastSeen = now

	reservation := l.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 0
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
		return false, delay
	}
	return true, 0
}
