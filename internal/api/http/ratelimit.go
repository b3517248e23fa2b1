package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"github.com/spec-kit/job-portal/internal/auth"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

const limiterTTL = 5 * time.Minute

// RateLimiter throttles requests per authenticated principal with one token
// bucket per caller. Buckets are refreshed after limiterTTL; expired ones are
// dropped by an eviction pass that runs at most once per limiterTTL.
type RateLimiter struct {
	limiters sync.Map // key -> *cachedLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time

	evictMu   sync.Mutex
	nextEvict time.Time
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

// NewRateLimiter builds a limiter. A non-positive rate disables throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limit: rate.Limit(perSecond), burst: burst, now: time.Now}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	if l == nil || l.limit <= 0 {
		return true
	}
	return l.limiterFor(key).Allow()
}

func (l *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := l.now()
	l.evictExpired(now)
	if cached, ok := l.limiters.Load(key); ok {
		entry := cached.(*cachedLimiter)
		if now.Before(entry.expiresAt) {
			return entry.limiter
		}
	}
	entry := &cachedLimiter{
		limiter:   rate.NewLimiter(l.limit, l.burst),
		expiresAt: now.Add(limiterTTL),
	}
	actual, loaded := l.limiters.LoadOrStore(key, entry)
	if loaded {
		existing := actual.(*cachedLimiter)
		if now.Before(existing.expiresAt) {
			return existing.limiter
		}
		l.limiters.Store(key, entry)
	}
	return entry.limiter
}

func (l *RateLimiter) evictExpired(now time.Time) {
	l.evictMu.Lock()
	if now.Before(l.nextEvict) {
		l.evictMu.Unlock()
		return
	}
	l.nextEvict = now.Add(limiterTTL)
	l.evictMu.Unlock()

	l.limiters.Range(func(key, value any) bool {
		if !now.Before(value.(*cachedLimiter).expiresAt) {
			l.limiters.CompareAndDelete(key, value)
		}
		return true
	})
}

// Handle rejects callers that exceeded their budget.
func (l *RateLimiter) Handle(c *fiber.Ctx) error {
	key := c.IP()
	if principal, ok := auth.PrincipalFromContext(c); ok {
		key = principal.ID
	}
	if !l.Allow(key) {
		c.Set(fiber.HeaderRetryAfter, "1")
		return apperrors.NewRateLimited("too many requests, slow down")
	}
	return c.Next()
}
