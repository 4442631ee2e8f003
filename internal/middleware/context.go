// Package middleware 提供 HTTP 中间件：请求 ID、恢复、超时、CORS、访问日志与认证。
package middleware

import (
	"context"

	"github.com/MorseWayne/gift_market/internal/domain"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
	contextKeyViewer    contextKey = "viewer"
)

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext 返回请求 ID，未经过 RequestID 中间件时为空
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// WithViewer 将已认证的用户写入上下文
func WithViewer(ctx context.Context, viewer *domain.Viewer) context.Context {
	return context.WithValue(ctx, contextKeyViewer, viewer)
}

// ViewerFromContext 返回当前用户，匿名请求返回 nil
func ViewerFromContext(ctx context.Context) *domain.Viewer {
	viewer, _ := ctx.Value(contextKeyViewer).(*domain.Viewer)
	return viewer
}
