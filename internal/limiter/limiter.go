// Package limiter 提供令牌桶限流：Redis 实现用于多实例部署，本地实现用于单实例和测试。
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// 配置错误
var (
	ErrNilConfig     = errors.New("limiter config is required")
	ErrInvalidConfig = errors.New("invalid limiter config")
)

// LimitResult 限流结果
type LimitResult struct {
	Allowed    bool          `json:"allowed"`     // 是否允许通过
	Limit      int64         `json:"limit"`       // 桶容量
	Remaining  int64         `json:"remaining"`   // 剩余令牌
	RetryAfter time.Duration `json:"retry_after"` // 建议重试时间
}

// Limiter 限流器接口
type Limiter interface {
	// Allow 检查是否允许请求通过
	Allow(ctx context.Context, key string) (*LimitResult, error)

	// AllowN 检查是否允许N个请求通过
	AllowN(ctx context.Context, key string, n int64) (*LimitResult, error)

	// Reset 重置限流状态
	Reset(ctx context.Context, key string) error
}

// Config 限流配置：每个 Window 补充 Rate 个令牌，桶容量为 Burst
type Config struct {
	Rate      int64         `json:"rate"`
	Window    time.Duration `json:"window"`
	Burst     int64         `json:"burst"`
	KeyPrefix string        `json:"key_prefix"`
}

// validate 校验配置并补齐默认前缀
func (c *Config) validate(defaultPrefix string) error {
	if c == nil {
		return ErrNilConfig
	}
	if c.Rate <= 0 || c.Burst <= 0 || c.Window <= 0 {
		return fmt.Errorf("%w: rate, burst and window must be positive", ErrInvalidConfig)
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultPrefix
	}
	return nil
}

// perSecond 返回每秒补充的令牌数
func (c *Config) perSecond() float64 {
	return float64(c.Rate) / c.Window.Seconds()
}
