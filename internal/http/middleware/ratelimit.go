// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements an in-memory token-bucket rate limiter with one
// bucket per caller. Every authenticated route ultimately reaches either the
// database or the model gateway, and model calls cost real money per turn,
// so the limiter sits in front of the whole API as edge-level cost
// protection. It is not an authorization mechanism.
//
// The limiter is process-local. A horizontally scaled deployment needs a
// shared store behind it to enforce a global limit; a single container is
// the expected shape here.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// bucketTTL is how long an idle caller's bucket survives before eviction.
const bucketTTL = 10 * time.Minute

// sweepEvery triggers an eviction sweep after this many bucket lookups.
const sweepEvery = 5000

// keyFunc maps a request to the identity that owns its token bucket. The
// returned key must be stable for the duration of the request.
type keyFunc func(*gin.Context) string

// KeyByUserOrIP returns a keyFunc that buckets by the authenticated user id
// when RequireAuth has already run, and by client IP otherwise (the register,
// verify, and login endpoints see only IPs). The limiter must therefore be
// registered after RequireAuth on authenticated groups. Keys are namespaced
// so a user id can never collide with an address.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if id := UserID(c); id != "" {
			return "user:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

// bucket pairs a limiter with its last use, for idle eviction.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-caller token-bucket limit.
//
// Buckets are created on demand in a mutex-guarded map and evicted after
// bucketTTL of inactivity via opportunistic sweeps during lookups, so memory
// stays bounded by the active caller set. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	lookups uint64
}

// NewRateLimiter constructs a RateLimiter replenishing rps tokens per second
// with the given burst, keyed by keyFn. A burst <= 0 is coerced to 1; an rps
// of 0 admits nothing, which is only useful in tests.
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
	}
}

// get returns the limiter for key, creating it if absent. Idle buckets are
// swept before the lookup so an expired bucket is evicted even when it is
// the one being fetched, which resets its burst allowance.
func (rl *RateLimiter) get(key string) *rate.Limiter {
	now := time.Now()

	rl.mu.Lock()
	rl.lookups++
	if rl.lookups >= sweepEvery {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= bucketTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lookups = 0
	}

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = now
		lim := b.limiter
		rl.mu.Unlock()
		return lim
	}

	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.buckets[key] = &bucket{limiter: lim, lastSeen: now}
	rl.mu.Unlock()
	return lim
}

// Handler returns the Gin middleware enforcing the limit. Rejected requests
// get 429 with the stable rate_limited code and a minimal Retry-After.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.get(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": c.Writer.Header().Get("X-Request-ID"),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
