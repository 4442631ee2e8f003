// Package resp 定义统一的 JSON 响应包结构。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务码
const (
	CodeOK              = 0
	CodeInvalidParam    = 40001
	CodeUnauthorized    = 40101
	CodeNotFound        = 40401
	CodeTooManyRequests = 42901
	CodeInternalError   = 50001
	CodeUnavailable     = 50301
	CodeTimeout         = 50401
)

// Envelope 为所有接口的响应结构
type Envelope struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteJSON 以指定状态码写出 JSON
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK 写出成功响应
func OK(w http.ResponseWriter, data any, reqID, traceID string) {
	WriteJSON(w, http.StatusOK, Envelope{
		Code:      CodeOK,
		Message:   "ok",
		Data:      data,
		RequestID: reqID,
		TraceID:   traceID,
	})
}

// Error 写出错误响应
func Error(w http.ResponseWriter, status, code int, msg, reqID, traceID string) {
	WriteJSON(w, status, Envelope{
		Code:      code,
		Message:   msg,
		RequestID: reqID,
		TraceID:   traceID,
	})
}

// HTTPStatusFromCode 将业务码映射为 HTTP 状态码
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
