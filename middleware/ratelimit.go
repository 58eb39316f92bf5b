package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tooManyRequests = "Too many requests, please try again later"

// limiterTimeout bounds the Redis round trips of one request.
const limiterTimeout = 2 * time.Second

// IPRateLimiter is a sliding-window limiter kept in process memory. It is
// used when no Redis is configured.
type IPRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return &IPRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	requests := rl.requests[ip]
	i := 0
	for ; i < len(requests); i++ {
		if requests[i].After(cutoff) {
			break
		}
	}
	requests = requests[i:]

	if len(requests) >= rl.limit {
		rl.requests[ip] = requests
		return false
	}
	rl.requests[ip] = append(requests, now)
	return true
}

// Sweep drops clients with no request inside the window.
func (rl *IPRateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window)
	for ip, reqs := range rl.requests {
		if len(reqs) == 0 || !reqs[len(reqs)-1].After(cutoff) {
			delete(rl.requests, ip)
		}
	}
}

func IPRateLimit(rl *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": tooManyRequests})
			return
		}
		c.Next()
	}
}

// RedisRateLimit is a fixed-window limiter shared by every API instance.
// Requests pass when Redis is unreachable.
//
// The window key gets its TTL from the first request. A key left without
// one, because that EXPIRE failed, is given it again by the next rejected
// request so a client cannot stay locked out.
func RedisRateLimit(rdb redis.Cmdable, limit int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), limiterTimeout)
		defer cancel()
		key := "ratelimit:" + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			expireWindow(ctx, rdb, key, window, log)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if count > int64(limit) {
			if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl < 0 {
				expireWindow(ctx, rdb, key, window, log)
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": tooManyRequests})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
		c.Next()
	}
}

func expireWindow(ctx context.Context, rdb redis.Cmdable, key string, window time.Duration, log *zap.Logger) {
	if err := rdb.Expire(ctx, key, window).Err(); err != nil {
		log.Warn("rate limit window expiry failed", zap.String("key", key), zap.Error(err))
	}
}
