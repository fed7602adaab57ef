package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/repairdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyPublicInvoice = "repairdesk:public:invoice:%s"

	DefaultPerMinute = 30
)

// Result describes a single rate limit decision.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether one more request under key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// PublicKey builds the bucket key for the public invoice endpoints.
func PublicKey(clientIP, repairID string) string {
	return strings.TrimSpace(clientIP) + "|" + strings.TrimSpace(repairID)
}

// RedisLimiter shares buckets between replicas.
type RedisLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewRedisLimiter(client redis.Scripter, perMinute int) *RedisLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	return &RedisLimiter{
		bucket: NewTokenBucket(client),
		rate:   float64(perMinute) / 60,
		burst:  perMinute,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.bucket.Allow(ctx, fmt.Sprintf(keyPublicInvoice, key), l.rate, l.burst)
}

// MemoryLimiter keeps buckets in process. Idle buckets are dropped once they
// would be full again.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
	rate    float64
	burst   int
	now     func() time.Time

	lastSweep time.Time
}

type memoryBucket struct {
	tokens float64
	ts     time.Time
}

func NewMemoryLimiter(perMinute int) *MemoryLimiter {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	return &MemoryLimiter{
		buckets: make(map[string]*memoryBucket),
		rate:    float64(perMinute) / 60,
		burst:   perMinute,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &memoryBucket{tokens: float64(l.burst), ts: now}
		l.buckets[key] = b
	} else {
		elapsed := now.Sub(b.ts).Seconds()
		if elapsed > 0 {
			b.tokens = min(float64(l.burst), b.tokens+elapsed*l.rate)
		}
		b.ts = now
	}

	res := Result{Limit: l.burst}
	if b.tokens >= 1 {
		b.tokens--
		res.Allowed = true
	} else {
		res.RetryAfter = refillDelay(b.tokens, l.rate)
	}
	res.Remaining = int(b.tokens)
	return res, nil
}

func (l *MemoryLimiter) sweep(now time.Time) {
	ttl := defaultBucketTTL(l.rate, l.burst)
	if now.Sub(l.lastSweep) < ttl {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.ts) > ttl {
			delete(l.buckets, key)
		}
	}
}

// NewLimiter uses redis when REDIS_ADDR is set and an in-process limiter otherwise.
func NewLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Limiter {
	perMinute := cfg.PublicRateLimitPerMinute
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		log.Info("public rate limit uses in-memory buckets", zap.Int("per_minute", perMinute))
		return NewMemoryLimiter(perMinute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	log.Info("public rate limit uses redis", zap.String("addr", cfg.RedisAddr), zap.Int("per_minute", perMinute))
	return NewRedisLimiter(client, perMinute)
}

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = (*MemoryLimiter)(nil)
)
