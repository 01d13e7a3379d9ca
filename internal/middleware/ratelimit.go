package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// RateLimiter is a Redis-backed fixed-window limiter keyed by client IP.
// Generation dispatches are expensive upstream, so the limiter sits in
// front of the generate endpoints.
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter connects a limiter to Redis. An empty addr disables
// limiting; Allow then always returns true.
func NewRateLimiter(addr string, limit int, window time.Duration) *RateLimiter {
	addr = strings.TrimSpace(addr)
	if addr == "" || limit <= 0 || window <= 0 {
		return nil
	}
	return &RateLimiter{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		prefix: "lookbook:ratelimit",
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the key is within quota. On Redis failures it fails
// closed: a broken limiter must not open the floodgates upstream.
func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}
	windowMs := l.window.Milliseconds()
	slot := time.Now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		return false
	}
	return count <= int64(l.limit)
}

// RateLimit enforces the limiter per client IP. A nil limiter is a no-op.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), ClientIP(r)) {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
