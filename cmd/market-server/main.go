package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/api"
	"github.com/MorseWayne/gift_market/internal/cache"
	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/database"
	"github.com/MorseWayne/gift_market/internal/limiter"
	"github.com/MorseWayne/gift_market/internal/logger"
	mw "github.com/MorseWayne/gift_market/internal/middleware"
	"github.com/MorseWayne/gift_market/internal/repo"
	"github.com/MorseWayne/gift_market/internal/resp"
	"github.com/MorseWayne/gift_market/internal/service"
)

// AppDependencies 包含应用的所有依赖
type AppDependencies struct {
	CatalogHandler *api.CatalogHandler
	JWTService     service.JWTService
	Limiter        limiter.Limiter
}

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

// initDatabase 连接数据库并在启动 HTTP 服务前执行迁移
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	lg.Sugar().Infow("using migrations directory", "path", cfg.Migrations.Dir)
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

// initCache 初始化缓存实例，Redis 不可用时回退到内存缓存
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		lg.Sugar().Infow("cache disabled")
		return cache.NewNullCache()
	}
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err == nil {
			lg.Sugar().Infow("cache enabled", "type", "redis", "addr", cfg.RedisAddr(), "ttl", cfg.Cache.TTL)
			return redisCache
		}
		lg.Sugar().Warnw("failed to connect to Redis, falling back to memory cache", "error", err)
	}
	lg.Sugar().Infow("cache enabled", "type", "memory", "ttl", cfg.Cache.TTL)
	return cache.NewMemoryCache()
}

// initLimiter 有 Redis 时使用分布式令牌桶，否则使用进程内令牌桶
func initLimiter(cfg *config.Config, cacheInstance cache.Cache, lg *zap.Logger) (limiter.Limiter, error) {
	if !cfg.RateLimit.Enabled {
		return nil, nil
	}
	lc := &limiter.Config{
		Rate:   int64(cfg.RateLimit.Rate),
		Burst:  int64(cfg.RateLimit.Burst),
		Window: cfg.RateLimit.Window,
	}
	if redisCache, ok := cacheInstance.(*cache.RedisCache); ok {
		tb, err := limiter.NewTokenBucketLimiter(redisCache.Client(), lc)
		if err != nil {
			return nil, err
		}
		lg.Sugar().Infow("rate limit enabled", "type", "redis", "rate", lc.Rate, "burst", lc.Burst, "window", lc.Window)
		return tb, nil
	}
	local, err := limiter.NewLocalLimiter(lc)
	if err != nil {
		return nil, err
	}
	lg.Sugar().Infow("rate limit enabled", "type", "local", "rate", lc.Rate, "burst", lc.Burst, "window", lc.Window)
	return local, nil
}

// initDependencies 初始化依赖注入链：仓储 -> 服务 -> API处理器
func initDependencies(cfg *config.Config, db *database.DB, cacheInstance cache.Cache, lg *zap.Logger) (*AppDependencies, error) {
	var catalogRepo repo.CatalogRepository
	if db != nil {
		catalogRepo = repo.NewCatalogRepository(db.DB)
		if cfg.Cache.Enabled {
			catalogRepo = repo.NewCachedCatalogRepository(catalogRepo, cacheInstance, cfg.Cache.TTL)
		}
	}

	catalogService, err := service.NewCatalogService(cfg.Catalog.Source, catalogRepo, lg)
	if err != nil {
		return nil, err
	}
	rl, err := initLimiter(cfg, cacheInstance, lg)
	if err != nil {
		return nil, fmt.Errorf("init rate limiter: %w", err)
	}

	return &AppDependencies{
		CatalogHandler: api.NewCatalogHandler(catalogService, lg),
		JWTService:     service.NewJWTService(cfg, lg),
		Limiter:        rl,
	}, nil
}

// healthz 健康检查
func healthz(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":  "ok",
			"version": version,
		}
		resp.OK(w, &data, mw.RequestIDFromContext(r.Context()), "")
	}
}

// setupRoutes 设置路由和中间件
func setupRoutes(cfg *config.Config, deps *AppDependencies, lg *zap.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", healthz(cfg.App.Version))
	deps.CatalogHandler.RegisterRoutes(mux, mw.AuthMiddleware(deps.JWTService, lg))

	// 请求进入时执行顺序为 access log → CORS → timeout → recovery → request ID → optional auth → rate limit
	var handler http.Handler = mux
	if deps.Limiter != nil {
		handler = limiter.Middleware(limiter.MiddlewareConfig{
			Limiter:      deps.Limiter,
			Logger:       lg,
			KeyGenerator: limitKey,
			RequestID: func(r *http.Request) string {
				return mw.RequestIDFromContext(r.Context())
			},
			Skip: func(r *http.Request) bool { return r.URL.Path == "/healthz" },
		})(handler)
	}
	handler = mw.OptionalAuth(deps.JWTService, lg)(handler)
	handler = mw.RequestID(handler)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.CORS(mw.CORSConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	})(handler)
	handler = mw.AccessLog(lg)(handler)

	return handler
}

// limitKey 已认证的请求按用户限流，匿名请求按 IP
func limitKey(r *http.Request) string {
	if viewer := mw.ViewerFromContext(r.Context()); viewer != nil {
		return "user:" + strconv.FormatInt(viewer.UserID, 10)
	}
	return limiter.DefaultKeyGenerator(r)
}

// startServer 启动服务器并处理优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Sugar().Infow("server starting", "addr", addr, "catalog_source", cfg.Catalog.Source)
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Sugar().Errorw("server error", "err", err)
			return
		}
	case <-quit:
		lg.Sugar().Infow("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Sugar().Errorw("server shutdown error", "err", err)
	}
	lg.Sugar().Infow("server exited")
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	// 只有 mysql 来源需要数据库
	var db *database.DB
	if cfg.Catalog.Source == config.CatalogSourceMySQL {
		db, err = initDatabase(cfg, lg)
		if err != nil {
			lg.Sugar().Fatalw("failed to initialize database", "err", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				lg.Sugar().Errorw("failed to close database connection", "err", err)
			}
		}()
	}

	cacheInstance := initCache(cfg, lg)
	defer func() {
		if err := cacheInstance.Close(); err != nil {
			lg.Sugar().Errorw("failed to close cache", "err", err)
		}
	}()

	deps, err := initDependencies(cfg, db, cacheInstance, lg)
	if err != nil {
		lg.Sugar().Fatalw("failed to initialize dependencies", "err", err)
	}

	startServer(cfg, setupRoutes(cfg, deps, lg), lg)
}
