// Package config 从 .env 文件和环境变量加载应用配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config 按关注点组织的运行时配置
type Config struct {
	App        AppConfig
	Log        LogConfig
	Catalog    CatalogConfig
	Database   DatabaseConfig
	Migrations MigrationsConfig
	Cache      CacheConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	JWT        JWTConfig
	CORS       CORSConfig
	MarketAPI  MarketAPIConfig
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name            string
	Env             string
	Version         string
	Port            int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string
	Encoding string
}

// CatalogConfig 目录快照来源配置
type CatalogConfig struct {
	// Source 为 seed（内置样例）或 mysql
	Source string
}

// DatabaseConfig MySQL 连接配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// MigrationsConfig 迁移文件配置
type MigrationsConfig struct {
	Dir string
}

// CacheConfig 缓存配置
type CacheConfig struct {
	Enabled bool
	Type    string
	TTL     time.Duration
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RateLimitConfig 令牌桶限流配置
type RateLimitConfig struct {
	Enabled bool
	Rate    int
	Burst   int
	Window  time.Duration
}

// JWTConfig 令牌配置
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// MarketAPIConfig 命令行客户端访问的市场后端配置
type MarketAPIConfig struct {
	BaseURL  string
	Timeout  time.Duration
	TokenDir string
}

// 目录来源
const (
	CatalogSourceSeed  = "seed"
	CatalogSourceMySQL = "mysql"
)

// Load 读取 .env（存在时）与环境变量并校验
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup 使用给定的查找函数构建配置，便于测试
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	r := &reader{lookup: lookup}
	cfg := &Config{
		App: AppConfig{
			Name:            r.str("APP_NAME", "gift-market"),
			Env:             r.str("APP_ENV", "dev"),
			Version:         r.str("APP_VERSION", "0.1.0"),
			Port:            r.int("APP_PORT", 8080),
			RequestTimeout:  r.duration("APP_REQUEST_TIMEOUT", 5*time.Second),
			ShutdownTimeout: r.duration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:    r.str("LOG_LEVEL", "info"),
			Encoding: r.str("LOG_ENCODING", ""),
		},
		Catalog: CatalogConfig{
			Source: r.str("CATALOG_SOURCE", CatalogSourceSeed),
		},
		Database: DatabaseConfig{
			Host:     r.str("DB_HOST", "127.0.0.1"),
			Port:     r.int("DB_PORT", 3306),
			User:     r.str("DB_USER", "root"),
			Password: r.str("DB_PASSWORD", ""),
			DBName:   r.str("DB_NAME", "gift_market"),
		},
		Migrations: MigrationsConfig{
			Dir: r.str("MIGRATIONS_DIR", "migrations"),
		},
		Cache: CacheConfig{
			Enabled: r.bool("CACHE_ENABLED", false),
			Type:    r.str("CACHE_TYPE", "memory"),
			TTL:     r.duration("CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     r.str("REDIS_HOST", "127.0.0.1"),
			Port:     r.int("REDIS_PORT", 6379),
			Password: r.str("REDIS_PASSWORD", ""),
			DB:       r.int("REDIS_DB", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled: r.bool("RATE_LIMIT_ENABLED", false),
			Rate:    r.int("RATE_LIMIT_RATE", 20),
			Burst:   r.int("RATE_LIMIT_BURST", 40),
			Window:  r.duration("RATE_LIMIT_WINDOW", time.Second),
		},
		JWT: JWTConfig{
			Secret:         r.str("JWT_SECRET", ""),
			AccessTokenTTL: r.duration("JWT_ACCESS_TTL", time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: r.csv("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: r.csv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders: r.csv("CORS_ALLOWED_HEADERS", []string{"Authorization", "Content-Type", "X-Request-ID", "Idempotency-Key"}),
		},
		MarketAPI: MarketAPIConfig{
			BaseURL:  r.str("MARKET_API_BASE_URL", ""),
			Timeout:  r.duration("MARKET_API_TIMEOUT", 15*time.Second),
			TokenDir: r.str("MARKET_TOKEN_DIR", defaultTokenDir()),
		},
	}
	if len(r.errs) > 0 {
		return nil, errors.Join(r.errs...)
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "console"
		if cfg.App.Env == "prod" {
			cfg.Log.Encoding = "json"
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	var errs []error
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.App.Port))
	}
	switch c.App.Env {
	case "dev", "test", "prod":
	default:
		errs = append(errs, fmt.Errorf("APP_ENV must be dev, test or prod: %q", c.App.Env))
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("LOG_ENCODING must be json or console: %q", c.Log.Encoding))
	}
	switch c.Catalog.Source {
	case CatalogSourceSeed, CatalogSourceMySQL:
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE must be seed or mysql: %q", c.Catalog.Source))
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("CACHE_TYPE must be memory or redis: %q", c.Cache.Type))
	}
	for name, d := range map[string]time.Duration{
		"APP_REQUEST_TIMEOUT":  c.App.RequestTimeout,
		"APP_SHUTDOWN_TIMEOUT": c.App.ShutdownTimeout,
		"CACHE_TTL":            c.Cache.TTL,
		"RATE_LIMIT_WINDOW":    c.RateLimit.Window,
		"JWT_ACCESS_TTL":       c.JWT.AccessTokenTTL,
		"MARKET_API_TIMEOUT":   c.MarketAPI.Timeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RATE and RATE_LIMIT_BURST must be positive"))
	}
	if c.App.Env == "prod" && c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required in prod"))
	}
	return errors.Join(errs...)
}

// RedisAddr 返回 host:port 形式的 Redis 地址
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func defaultTokenDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".gift-market"
	}
	return dir + string(os.PathSeparator) + "gift-market"
}

type reader struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (r *reader) raw(key string) (string, bool) {
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) str(key, def string) string {
	if v, ok := r.raw(key); ok {
		return v
	}
	return def
}

func (r *reader) int(key string, def int) int {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (r *reader) bool(key string, def bool) bool {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (r *reader) csv(key string, def []string) []string {
	v, ok := r.raw(key)
	if !ok {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
