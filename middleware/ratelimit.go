package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sittawut/coverage-admin/models"
	"go.uber.org/zap"
)

// Limiter decides whether one more request for key fits in the current
// window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type windowCount struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed window counter.
type MemoryLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	counts    map[string]*windowCount
	nextSweep time.Time
	now       func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextSweep) {
		for k, wc := range l.counts {
			if !now.Before(wc.resetAt) {
				delete(l.counts, k)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	wc, ok := l.counts[key]
	if !ok || !now.Before(wc.resetAt) {
		wc = &windowCount{resetAt: now.Add(l.window)}
		l.counts[key] = wc
	}
	wc.count++
	return wc.count <= l.max, nil
}

// RedisLimiter shares the fixed window counters between instances.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() <= int64(l.max), nil
}

// RateLimit rejects clients over the limit with 429. Limiter failures let
// the request through.
func RateLimit(limiter Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("client_ip", c.ClientIP()), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{Error: "Too many requests"})
			return
		}
		c.Next()
	}
}
