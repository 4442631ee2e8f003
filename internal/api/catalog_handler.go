// Package api 提供目录相关的HTTP API处理器实现。
package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
	"github.com/MorseWayne/gift_market/internal/middleware"
	"github.com/MorseWayne/gift_market/internal/resp"
	"github.com/MorseWayne/gift_market/internal/service"
)

// CatalogHandler 目录相关的HTTP处理器
type CatalogHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewCatalogHandler 创建目录处理器实例
func NewCatalogHandler(catalogService service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes 注册目录路由，reload 需要认证
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux, auth func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /api/v1/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/v1/catalog/options", h.GetOptions)
	mux.Handle("POST /api/v1/catalog/reload", auth(http.HandlerFunc(h.Reload)))
}

// GetCatalog 返回页面的完整快照，过滤与排序由客户端完成
// GET /api/v1/catalog?screen=market|activity
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())
	screen := r.URL.Query().Get("screen")

	store, err := h.catalogService.Snapshot(r.Context(), screen)
	if err != nil {
		h.writeError(w, r, "get catalog failed", err)
		return
	}

	fields := []zap.Field{
		zap.String("request_id", reqID),
		zap.String("screen", store.Profile().Name),
		zap.Int("entries", store.Len()),
	}
	if viewer := middleware.ViewerFromContext(r.Context()); viewer != nil {
		fields = append(fields, zap.Int64("user_id", viewer.UserID))
	}
	h.logger.Debug("catalog served", fields...)

	resp.OK(w, domain.CatalogSnapshot{
		Screen:  store.Profile().Name,
		Version: store.Version(),
		Entries: store.Entries(),
	}, reqID, "")
}

// GetOptions 返回页面配置：选项目录、各分区可用界面、默认状态与数值域
// GET /api/v1/catalog/options?screen=market|activity
func (h *CatalogHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	profile, err := catalog.ProfileByName(r.URL.Query().Get("screen"))
	if err != nil {
		h.writeError(w, r, "get options failed", err)
		return
	}
	resp.OK(w, profile, reqID, "")
}

// Reload 重新加载页面快照
// POST /api/v1/catalog/reload?screen=market|activity
func (h *CatalogHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	store, err := h.catalogService.Reload(r.Context(), r.URL.Query().Get("screen"))
	if err != nil {
		h.writeError(w, r, "reload catalog failed", err)
		return
	}

	fields := []zap.Field{
		zap.String("request_id", reqID),
		zap.String("screen", store.Profile().Name),
		zap.Uint64("version", store.Version()),
	}
	if viewer := middleware.ViewerFromContext(r.Context()); viewer != nil {
		fields = append(fields, zap.Int64("user_id", viewer.UserID))
	}
	h.logger.Info("catalog reloaded", fields...)
	resp.OK(w, map[string]any{
		"screen":  store.Profile().Name,
		"version": store.Version(),
		"entries": store.Len(),
	}, reqID, "")
}

// writeError 将服务错误映射为统一响应
func (h *CatalogHandler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())

	if errors.Is(err, catalog.ErrUnknownProfile) {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
		return
	}
	if middleware.HandleTimeout(w, r) {
		return
	}

	h.logger.Error(msg, zap.String("request_id", reqID), zap.Error(err))
	resp.Error(w, http.StatusServiceUnavailable, resp.CodeUnavailable, "catalog unavailable", reqID, "")
}
