package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/MorseWayne/gift_market/internal/resp"
)

// Timeout 为请求上下文设置截止时间，超时后由 http.TimeoutHandler 返回统一的 JSON 错误体
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	body := `{"code":` + strconv.Itoa(resp.CodeTimeout) + `,"message":"request timeout"}`
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, body)
	}
}

// HandleTimeout 在上下文已过期时写入超时响应，返回是否已处理
func HandleTimeout(w http.ResponseWriter, r *http.Request) bool {
	if err := r.Context().Err(); errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		reqID := RequestIDFromContext(r.Context())
		resp.Error(w, resp.HTTPStatusFromCode(resp.CodeTimeout), resp.CodeTimeout, "request timeout", reqID, "")
		return true
	}
	return false
}
