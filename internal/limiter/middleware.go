package limiter

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/resp"
)

// 限流响应头
const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderRetryAfter = "Retry-After"
)

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Limiter Limiter
	Logger  *zap.Logger

	// KeyGenerator 生成限流 key，默认按客户端 IP
	KeyGenerator func(*http.Request) string

	// RequestID 读取请求 ID 用于响应与日志
	RequestID func(*http.Request) string

	// Skip 返回 true 时跳过限流检查
	Skip func(*http.Request) bool
}

// ClientIP 返回客户端 IP，优先使用 X-Forwarded-For 的第一个地址
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// DefaultKeyGenerator 默认Key生成器（基于IP）
func DefaultKeyGenerator(r *http.Request) string {
	return fmt.Sprintf("ip:%s", ClientIP(r))
}

// Middleware 创建限流中间件。限流服务异常时放行请求并记录日志。
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}
	if cfg.RequestID == nil {
		cfg.RequestID = func(*http.Request) string { return "" }
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			reqID := cfg.RequestID(r)
			key := cfg.KeyGenerator(r)

			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			result, err := cfg.Limiter.Allow(ctx, key)
			cancel()
			if err != nil {
				cfg.Logger.Warn("rate limiter unavailable",
					zap.String("request_id", reqID),
					zap.String("key", key),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)
			if !result.Allowed {
				cfg.Logger.Info("rate limit reached",
					zap.String("request_id", reqID),
					zap.String("key", key),
					zap.Duration("retry_after", result.RetryAfter),
				)
				resp.Error(w, http.StatusTooManyRequests, resp.CodeTooManyRequests,
					"too many requests, please retry later", reqID, "")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders 设置限流相关的响应头
func setRateLimitHeaders(w http.ResponseWriter, result *LimitResult) {
	h := w.Header()
	h.Set(HeaderLimit, strconv.FormatInt(result.Limit, 10))
	h.Set(HeaderRemaining, strconv.FormatInt(result.Remaining, 10))
	if result.RetryAfter > 0 {
		seconds := int64(math.Ceil(result.RetryAfter.Seconds()))
		h.Set(HeaderRetryAfter, strconv.FormatInt(seconds, 10))
	}
}
