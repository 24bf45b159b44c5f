package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const visitorTTL = 5 * time.Minute

// RateLimiter is a token bucket per client address. The address comes from
// gin's ClientIP, so forwarded headers only count from trusted proxies.
type RateLimiter struct {
	every rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// NewRateLimiter allows requestsPerMinute per client with a burst of a tenth
// of that. Zero or less returns nil, which Handler treats as unlimited.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		every:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    max(requestsPerMinute/10, 1),
		visitors: make(map[string]*visitor),
	}
}

// Handler rejects over-budget requests with 429 and a Retry-After hint.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	if l == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		res := l.bucket(c.ClientIP(), time.Now()).Reserve()
		if wait := res.Delay(); wait > 0 {
			res.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      "too many requests, please slow down",
				"code":       "rate_limited",
				"request_id": c.GetString(RequestIDKey),
			})
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) bucket(addr string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.seen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[addr]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(l.every, l.burst)}
		l.visitors[addr] = v
	}
	v.seen = now
	return v.bucket
}
