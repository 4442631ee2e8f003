package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// 客户端错误
var (
	// ErrBaseURLNotConfigured 未配置后端地址，任何网络调用都会失败
	ErrBaseURLNotConfigured = errors.New("API base URL is not configured (missing MARKET_API_BASE_URL)")
	// ErrSuperseded 同一资源发起了更新的请求，旧请求被取消
	ErrSuperseded = errors.New("request superseded by a newer one")
)

// APIError 表示后端返回的非 2xx 响应
type APIError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// errorBody 为后端错误体中客户端关心的字段，其余字段（包括 status）忽略
type errorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// newAPIError 根据状态码与可选的 JSON 错误体构造错误，message 缺失时使用状态文本。
// Status 总是取自响应状态码。
func newAPIError(status int, body *errorBody) *APIError {
	out := &APIError{Status: status, Message: http.StatusText(status)}
	if body != nil {
		if body.Message != "" {
			out.Message = body.Message
		}
		out.Details = body.Details
	}
	return out
}

// Message 将任意错误转换为可展示的文本，err 为 nil 时返回空串
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
	case errors.Is(err, ErrSuperseded):
		return ErrSuperseded.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
