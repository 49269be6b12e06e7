package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	// IdleTTL is how long an unused bucket is kept. Zero keeps buckets forever.
	IdleTTL time.Duration
	Skipper func(c echo.Context) bool
}

// DefaultRateLimitConfig returns default rate limiting settings.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 20,
		BurstSize:         40,
		IdleTTL:           10 * time.Minute,
	}
}

// bucket wraps a token-bucket limiter with the time it was last used.
type bucket struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func newBucket(rps float64, burst int, now time.Time) *bucket {
	if burst < 1 {
		burst = 1
	}
	return &bucket{limiter: rate.NewLimiter(rate.Limit(rps), burst), lastSeen: now}
}

// allow takes one token at now. On refusal it returns whole seconds until a
// token is available, at least 1.
func (b *bucket) allow(now time.Time) (ok bool, remaining int, retryAfter int) {
	b.mu.Lock()
	b.lastSeen = now
	b.mu.Unlock()

	if b.limiter.AllowN(now, 1) {
		return true, int(b.limiter.TokensAt(now)), 0
	}
	limit := float64(b.limiter.Limit())
	if limit <= 0 {
		return false, 0, 1
	}
	wait := (1 - b.limiter.TokensAt(now)) / limit
	return false, 0, int(math.Ceil(wait))
}

func (b *bucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen
}

// rateLimiterStore holds per-key buckets.
type rateLimiterStore struct {
	buckets   map[string]*bucket
	mu        sync.RWMutex
	config    RateLimitConfig
	lastSweep time.Time
}

func newRateLimiterStore(cfg RateLimitConfig) *rateLimiterStore {
	return &rateLimiterStore{
		buckets:   make(map[string]*bucket),
		config:    cfg,
		lastSweep: time.Now(),
	}
}

func (s *rateLimiterStore) getBucket(key string, now time.Time) *bucket {
	s.mu.RLock()
	b, ok := s.buckets[key]
	s.mu.RUnlock()
	if ok {
		return b
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[key]; ok {
		return b
	}
	s.sweepLocked(now)
	b = newBucket(s.config.RequestsPerSecond, s.config.BurstSize, now)
	s.buckets[key] = b
	return b
}

// sweepLocked drops idle buckets at most once per IdleTTL.
func (s *rateLimiterStore) sweepLocked(now time.Time) {
	ttl := s.config.IdleTTL
	if ttl <= 0 || now.Sub(s.lastSweep) < ttl {
		return
	}
	s.lastSweep = now
	for k, b := range s.buckets {
		if now.Sub(b.idleSince()) > ttl {
			delete(s.buckets, k)
		}
	}
}

func (s *rateLimiterStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.buckets)
}

// rateLimitKey prefers the authenticated user so staff sharing a ward
// workstation's IP do not throttle each other.
func rateLimitKey(c echo.Context) string {
	if uid := auth.UserIDFromContext(c.Request().Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.RealIP()
}

// RateLimit returns a rate limiting middleware.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return rateLimit(cfg, newRateLimiterStore(cfg), time.Now)
}

func rateLimit(cfg RateLimitConfig, store *rateLimiterStore, now func() time.Time) echo.MiddlewareFunc {
	limit := strconv.FormatFloat(cfg.RequestsPerSecond, 'f', -1, 64)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper != nil && cfg.Skipper(c) {
				return next(c)
			}

			t := now()
			allowed, remaining, retryAfter := store.getBucket(rateLimitKey(c), t).allow(t)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", limit)
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
