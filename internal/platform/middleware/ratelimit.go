package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL evicts a client's limiter after this long without requests.
	IdleTTL time.Duration
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		IdleTTL:           10 * time.Minute,
	}
}

// limiterStore keeps one token bucket per client key. Idle buckets expire
// from the cache, so a returning client starts with a full burst.
type limiterStore struct {
	mu       sync.Mutex
	limiters *gocache.Cache
	rate     rate.Limit
	burst    int
	ttl      time.Duration
}

func newLimiterStore(cfg RateLimitConfig) *limiterStore {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig().IdleTTL
	}
	return &limiterStore{
		limiters: gocache.New(cfg.IdleTTL, 2*cfg.IdleTTL),
		rate:     rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.BurstSize,
		ttl:      cfg.IdleTTL,
	}
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.limiters.Get(key); ok {
		l := v.(*rate.Limiter)
		s.limiters.Set(key, l, s.ttl)
		return l
	}
	l := rate.NewLimiter(s.rate, s.burst)
	s.limiters.Set(key, l, s.ttl)
	return l
}

// retryAfter returns whole seconds until the limiter has a token again.
func retryAfter(l *rate.Limiter) int {
	r := l.Reserve()
	delay := r.Delay()
	r.Cancel()
	if delay == rate.InfDuration {
		return 1
	}
	return int(math.Ceil(delay.Seconds()))
}

// RateLimit limits requests per client IP with a token bucket.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	store := newLimiterStore(cfg)
	limitHeader := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if sub, ok := c.Get("jwt_subject").(string); ok && sub != "" {
				key = sub + ":" + key
			}

			limiter := store.get(key)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limitHeader)
			if !limiter.Allow() {
				h.Set("Retry-After", strconv.Itoa(max(retryAfter(limiter), 1)))
				h.Set("X-RateLimit-Remaining", "0")
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
