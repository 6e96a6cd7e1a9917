package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds requests per client IP on the auth routes.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// ipLimiter keeps one token bucket per client IP. Idle entries are dropped
// once they have been unused for ttl.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rate     rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute, burst int, ttl time.Duration) *ipLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ipLimiter{
		limiters: make(map[string]*visitor),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.limiters, key)
		}
	}

	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// rateLimit returns a per-IP limiter middleware, or a pass-through when
// cfg.PerMinute is zero.
func rateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.PerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newIPLimiter(cfg.PerMinute, cfg.Burst, 15*time.Minute)

	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			respondError(c, http.StatusTooManyRequests, "Too many requests")
			return
		}
		c.Next()
	}
}
