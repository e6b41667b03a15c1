package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rohannagpure45/universal-assistant-sub008/pkg/config"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	// Allow returns whether the request is allowed, and when to retry if not
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// redisLimiter implements a sliding window over a Redis sorted set.
// Each request is a member scored by its timestamp; members older than
// the window are trimmed before counting.
type redisLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

// NewRedisLimiter creates a Redis-backed sliding window limiter
func NewRedisLimiter(client *redis.Client, requests int, window time.Duration) Limiter {
	return &redisLimiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	windowStart := now.Add(-l.window)
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if countCmd.Val() >= int64(l.requests) {
		// Oldest remaining entry determines when a slot opens
		oldest, err := l.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		retryAfter := l.window
		if err == nil && len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = oldestAt.Add(l.window).Sub(now)
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
		}
		return false, retryAfter, nil
	}

	pipe = l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to record request: %w", err)
	}

	return true, 0, nil
}

// memoryLimiter is the in-process fallback used when Redis is unavailable
type memoryLimiter struct {
	mu       sync.Mutex
	requests int
	window   time.Duration
	buckets  map[string][]time.Time
}

// NewMemoryLimiter creates an in-process sliding window limiter
func NewMemoryLimiter(requests int, window time.Duration) Limiter {
	return &memoryLimiter{
		requests: requests,
		window:   window,
		buckets:  make(map[string][]time.Time),
	}
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-l.window)

	times := l.buckets[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.requests {
		retryAfter := kept[0].Add(l.window).Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		l.buckets[key] = kept
		return false, retryAfter, nil
	}

	l.buckets[key] = append(kept, now)
	return true, 0, nil
}

// RateLimit limits requests per authenticated user (falling back to the
// client IP for unauthenticated routes). Returns 429 with Retry-After
// when the window is full.
func RateLimit(limiter Limiter, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if userID, ok := GetUserID(c); ok {
				key = userID.String()
			}

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), key)
			if err != nil {
				// A broken limiter must not take the API down
				if logger != nil {
					logger.Warn("⚠️ Rate limiter unavailable, allowing request",
						zap.Error(err),
					)
				}
				return next(c)
			}

			if !allowed {
				seconds := int(retryAfter.Round(time.Second).Seconds())
				if seconds < 1 {
					seconds = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
				return echo.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded")
			}

			return next(c)
		}
	}
}

// NewLimiter builds the configured limiter: Redis when available, with an
// in-process fallback otherwise
func NewLimiter(client *redis.Client, cfg *config.RateLimitConfig) Limiter {
	if client != nil {
		return NewRedisLimiter(client, cfg.Requests, cfg.Window)
	}
	return NewMemoryLimiter(cfg.Requests, cfg.Window)
}
