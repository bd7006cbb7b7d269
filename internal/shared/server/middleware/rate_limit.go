package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-backend/internal/shared/server/respond"
)

// PublicReadGroup is the limiter group for anonymous GET traffic.
const PublicReadGroup = "PUBLIC_READ"

// idleBucketTTL is how long a full, untouched bucket is kept before pruning.
const idleBucketTTL = 10 * time.Minute

// RateLimitRule is a token bucket refilled at Rate tokens per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules map[string]RateLimitRule
	// GroupFor picks the rule group for a request; "" means unlimited.
	GroupFor func(*gin.Context) string
	Limiter  *RateLimiter
}

// RateLimiter keeps one bucket per principal and group.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastPrune time.Time
}

type rateBucket struct {
	tokens float64
	seen   time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{buckets: make(map[string]*rateBucket), now: now}
}

// PublicReads groups GET requests outside the admin and auth trees. The resume
// unlock and mutate calls are POSTs and never limited.
func PublicReads(c *gin.Context) string {
	if c.Request.Method != http.MethodGet {
		return ""
	}
	path := c.Request.URL.Path
	for _, prefix := range []string{"/api/v1/admin", "/api/v1/auth"} {
		if strings.HasPrefix(path, prefix) {
			return ""
		}
	}
	return PublicReadGroup
}

// RateLimit rejects requests over their group's budget with 429 and a
// Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewRateLimiter(nil)
	}
	groupFor := cfg.GroupFor
	if groupFor == nil {
		groupFor = PublicReads
	}
	return func(c *gin.Context) {
		group := groupFor(c)
		rule, ok := cfg.Rules[group]
		if group == "" || !ok {
			c.Next()
			return
		}
		wait, ok := limiter.Take(principalOf(c)+"|"+group, rule)
		if ok {
			c.Next()
			return
		}
		ms := max(int(wait/time.Millisecond), 1)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(ms)/1000))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"retryAfterMs": ms,
		})
	}
}

func principalOf(c *gin.Context) string {
	if id := UserIDFromContext(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

// Take spends one token from key's bucket. When the bucket is empty it
// reports how long until the next token.
func (l *RateLimiter) Take(key string, rule RateLimitRule) (time.Duration, bool) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return 0, true
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &rateBucket{tokens: float64(rule.Burst), seen: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.seen).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(rule.Burst), b.tokens+elapsed*rule.Rate)
		b.seen = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	secs := (1 - b.tokens) / rule.Rate
	return time.Duration(math.Ceil(secs*1000)) * time.Millisecond, false
}

// prune drops buckets idle long enough to have refilled. Caller holds mu.
func (l *RateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < idleBucketTTL {
		return
	}
	l.lastPrune = now
	for k, b := range l.buckets {
		if now.Sub(b.seen) >= idleBucketTTL {
			delete(l.buckets, k)
		}
	}
}
