package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rw := httptest.NewRecorder()
	OK(rw, map[string]string{"status": "ok"}, "req-1", "")

	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Header().Get("Content-Type"), "application/json")

	var body struct {
		Code      int               `json:"code"`
		Data      map[string]string `json:"data"`
		RequestID string            `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	assert.Equal(t, CodeOK, body.Code)
	assert.Equal(t, "ok", body.Data["status"])
	assert.Equal(t, "req-1", body.RequestID)
}

func TestError(t *testing.T) {
	rw := httptest.NewRecorder()
	Error(rw, http.StatusBadRequest, CodeInvalidParam, "bad screen", "req-2", "")

	assert.Equal(t, http.StatusBadRequest, rw.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &env))
	assert.Equal(t, CodeInvalidParam, env.Code)
	assert.Equal(t, "bad screen", env.Message)
	assert.Nil(t, env.Data)
}

func TestHTTPStatusFromCode(t *testing.T) {
	tests := map[int]int{
		CodeOK:              http.StatusOK,
		CodeInvalidParam:    http.StatusBadRequest,
		CodeUnauthorized:    http.StatusUnauthorized,
		CodeTooManyRequests: http.StatusTooManyRequests,
		CodeTimeout:         http.StatusGatewayTimeout,
		CodeInternalError:   http.StatusInternalServerError,
		12345:               http.StatusInternalServerError,
	}
	for code, want := range tests {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}
