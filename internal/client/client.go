// Package client 实现市场后端的 REST 客户端：钱包操作与目录快照。
// 同一资源上的新请求会取消仍在进行中的旧请求，客户端不做自动重试。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

// DefaultTransactionLimit 为流水查询的默认条数
const DefaultTransactionLimit = 20

// 资源名，用于请求取代
const (
	ResourceProfile      = "profile"
	ResourceTransactions = "transactions"
	ResourceDeposit      = "deposit"
	ResourceWithdraw     = "withdraw"
	ResourceCatalog      = "catalog"
	ResourceOptions      = "options"
)

// 请求头
const (
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"
)

// Config 客户端配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 市场后端客户端，可在多个 goroutine 中使用
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenStore
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	inflight map[string]*inflight
}

type inflight struct {
	cancel context.CancelCauseFunc
}

// New 创建客户端。BaseURL 为空时客户端仍可创建，但每次调用都返回 ErrBaseURLNotConfigured。
func New(cfg Config, tokens TokenStore, logger *zap.Logger) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
		inflight: make(map[string]*inflight),
	}
}

// CreateDeposit 创建充值请求
func (c *Client) CreateDeposit(ctx context.Context, amount float64) (*domain.DepositResponse, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}
	var out domain.DepositResponse
	err := c.do(ctx, ResourceDeposit, http.MethodPost, "/api/deposit/create", domain.DepositRequest{Amount: amount}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestWithdrawal 发起提现，地址去除首尾空白后不能为空
func (c *Client) RequestWithdrawal(ctx context.Context, amount float64, address string) (*domain.WithdrawalResponse, error) {
	req := domain.WithdrawalRequest{Amount: amount, RecipientAddress: address}
	if err := domain.ValidateWithdrawal(&req); err != nil {
		return nil, err
	}
	var out domain.WithdrawalResponse
	if err := c.do(ctx, ResourceWithdraw, http.MethodPost, "/api/withdraw/request", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchProfile 获取余额信息
func (c *Client) FetchProfile(ctx context.Context) (*domain.Profile, error) {
	var out domain.Profile
	if err := c.do(ctx, ResourceProfile, http.MethodGet, "/api/profile/balance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchTransactions 获取最近的流水，limit 不为正数时使用默认值
func (c *Client) FetchTransactions(ctx context.Context, limit int) (*domain.TransactionList, error) {
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	var out domain.TransactionList
	path := "/api/transactions?limit=" + strconv.Itoa(limit)
	if err := c.do(ctx, ResourceTransactions, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Transactions == nil {
		out.Transactions = []domain.Transaction{}
	}
	return &out, nil
}

// envelope 目录接口的统一响应结构
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// FetchCatalog 获取页面的完整目录快照
func (c *Client) FetchCatalog(ctx context.Context, screen string) (*domain.CatalogSnapshot, error) {
	var out envelope[domain.CatalogSnapshot]
	path := "/api/v1/catalog?screen=" + url.QueryEscape(screen)
	if err := c.do(ctx, ResourceCatalog, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// FetchOptions 获取页面配置
func (c *Client) FetchOptions(ctx context.Context, screen string) (*catalog.Profile, error) {
	var out envelope[catalog.Profile]
	path := "/api/v1/catalog/options?screen=" + url.QueryEscape(screen)
	if err := c.do(ctx, ResourceOptions, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// begin 为资源登记新的请求并取消旧请求，返回的 done 只清除自己的登记
func (c *Client) begin(ctx context.Context, resource string) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(ctx)
	slot := &inflight{cancel: cancel}

	c.mu.Lock()
	if prev, ok := c.inflight[resource]; ok {
		prev.cancel(ErrSuperseded)
	}
	c.inflight[resource] = slot
	c.mu.Unlock()

	return ctx, func() {
		c.mu.Lock()
		if c.inflight[resource] == slot {
			delete(c.inflight, resource)
		}
		c.mu.Unlock()
		cancel(nil)
	}
}

// authToken 读取令牌，已过期的 JWT 会被清除且不再附加
func (c *Client) authToken() string {
	token, err := c.tokens.Token()
	if err != nil {
		c.logger.Warn("read auth token failed", zap.Error(err))
		return ""
	}
	if token == "" {
		return ""
	}
	if tokenExpired(token, c.now()) {
		c.logger.Info("stored auth token expired, dropping it")
		if err := c.tokens.SetToken(""); err != nil {
			c.logger.Warn("clear expired auth token failed", zap.Error(err))
		}
		return ""
	}
	return token
}

// do 发送请求并解码 JSON 响应，out 为 nil 或响应为 204 时不解码
func (c *Client) do(ctx context.Context, resource, method, path string, body, out any) error {
	if c.baseURL == "" {
		return ErrBaseURLNotConfigured
	}

	ctx, done := c.begin(ctx, resource)
	defer done()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)
	if method == http.MethodPost {
		req.Header.Set(HeaderIdempotencyKey, uuid.NewString())
	}
	if token := c.authToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) {
			return ErrSuperseded
		}
		c.logger.Warn("request failed",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	isJSON := strings.Contains(res.Header.Get("Content-Type"), "application/json")

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var errBody *errorBody
		if isJSON {
			var parsed errorBody
			if json.NewDecoder(res.Body).Decode(&parsed) == nil {
				errBody = &parsed
			}
		}
		apiErr := newAPIError(res.StatusCode, errBody)
		c.logger.Warn("request rejected",
			zap.String("request_id", reqID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", res.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if res.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if cause := context.Cause(ctx); errors.Is(cause, ErrSuperseded) {
			return ErrSuperseded
		}
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
