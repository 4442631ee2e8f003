package limiter

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalLimiter 进程内令牌桶，每个 key 一个 rate.Limiter
type LocalLimiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewLocalLimiter 创建进程内限流器
func NewLocalLimiter(config *Config) (*LocalLimiter, error) {
	if err := config.validate("limiter:local"); err != nil {
		return nil, err
	}
	return &LocalLimiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*rate.Limiter),
	}, nil
}

func (l *LocalLimiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(rate.Limit(l.config.perSecond()), int(l.config.Burst))
		l.buckets[key] = b
	}
	return b
}

// Allow 检查是否允许请求通过
func (l *LocalLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN 检查是否允许N个请求通过，拒绝时不消耗令牌
func (l *LocalLimiter) AllowN(_ context.Context, key string, n int64) (*LimitResult, error) {
	b := l.bucket(key)
	now := l.now()

	result := &LimitResult{Limit: l.config.Burst}
	if b.AllowN(now, int(n)) {
		result.Allowed = true
	} else {
		missing := float64(n) - b.TokensAt(now)
		result.RetryAfter = time.Duration(math.Ceil(missing / l.config.perSecond() * float64(time.Second)))
	}
	result.Remaining = int64(math.Max(0, math.Floor(b.TokensAt(now))))
	return result, nil
}

// Reset 重置限流状态
func (l *LocalLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
	return nil
}
