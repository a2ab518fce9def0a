package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/resilience"
)

// RateLimitConfig configures per-client submission limits.
type RateLimitConfig struct {
	// RequestsPerMinute per key. 0 disables limiting.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst is the bucket size. Defaults to RequestsPerMinute.
	Burst int `yaml:"burst" mapstructure:"burst"`
}

// idleBucket is how long an unused bucket is kept.
const idleBucket = 10 * time.Minute

type bucket struct {
	rl       *resilience.RateLimiter
	lastSeen time.Time
}

type limiterSet struct {
	mu      sync.Mutex
	cfg     resilience.RateLimiterConfig
	buckets map[string]*bucket
	swept   time.Time
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	if now.Sub(s.swept) > idleBucket {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) > idleBucket {
				delete(s.buckets, k)
			}
		}
		s.swept = now
	}
	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{rl: resilience.NewRateLimiter(s.cfg)}
		s.buckets[key] = b
	}
	b.lastSeen = now
	s.mu.Unlock()
	return b.rl.Allow()
}

// RateLimit applies a token bucket per client IP.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.RequestsPerMinute
	}
	set := &limiterSet{
		cfg: resilience.RateLimiterConfig{
			Name:  "http",
			Rate:  float64(cfg.RequestsPerMinute) / 60,
			Burst: burst,
		},
		buckets: make(map[string]*bucket),
		swept:   time.Now(),
	}
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP(), time.Now()) {
			err := apperrors.New(apperrors.ErrCodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
			c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			return
		}
		c.Next()
	}
}
