package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/MorseWayne/gift_market/internal/cache"
	"github.com/MorseWayne/gift_market/internal/domain"
)

// CachedCatalogRepository 带缓存的目录仓储
type CachedCatalogRepository struct {
	repo  CatalogRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedCatalogRepository 创建带缓存的目录仓储
func NewCachedCatalogRepository(repo CatalogRepository, cache cache.Cache, ttl time.Duration) CatalogRepository {
	return &CachedCatalogRepository{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
	}
}

// List 获取快照（带缓存），缓存错误时回源
func (r *CachedCatalogRepository) List(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	cacheKey := r.listCacheKey(screen)

	var entries []domain.CatalogEntry
	if err := r.cache.Get(ctx, cacheKey, &entries); err == nil && entries != nil {
		return entries, nil
	}

	result, err := r.repo.List(ctx, screen)
	if err != nil {
		return nil, err
	}

	r.cache.Set(ctx, cacheKey, result, r.ttl)
	return result, nil
}

// Refresh 跳过缓存读取数据源并覆盖缓存，数据源出错时保留原缓存
func (r *CachedCatalogRepository) Refresh(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	result, err := r.repo.Refresh(ctx, screen)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, r.listCacheKey(screen), result, r.ttl)
	return result, nil
}

// Count 统计条目数（不缓存）
func (r *CachedCatalogRepository) Count(ctx context.Context, screen string) (int64, error) {
	return r.repo.Count(ctx, screen)
}

// ReplaceAll 替换快照并清除缓存
func (r *CachedCatalogRepository) ReplaceAll(ctx context.Context, screen string, entries []domain.CatalogEntry) error {
	if err := r.repo.ReplaceAll(ctx, screen, entries); err != nil {
		return err
	}
	r.cache.Del(ctx, r.listCacheKey(screen))
	return nil
}

func (r *CachedCatalogRepository) listCacheKey(screen string) string {
	return fmt.Sprintf("catalog:snapshot:%s", screen)
}
