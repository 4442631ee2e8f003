package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/repo"
)

// ErrRepositoryRequired 表示 mysql 来源缺少仓储
var ErrRepositoryRequired = errors.New("catalog repository is required for mysql source")

// CatalogService 定义目录快照业务接口
type CatalogService interface {
	// Snapshot 返回页面的目录快照，首次访问时加载并在内存中保留
	Snapshot(ctx context.Context, screen string) (*catalog.Store, error)
	// Reload 跳过缓存从数据源重新加载，失败时保留原快照
	Reload(ctx context.Context, screen string) (*catalog.Store, error)
	// Seed 将内置样例数据写入仓储
	Seed(ctx context.Context) error
}

// catalogService 实现 CatalogService 接口
type catalogService struct {
	source string
	repo   repo.CatalogRepository
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*catalog.Store
}

// NewCatalogService 创建目录服务实例。source 为 seed 时 catalogRepo 可为 nil。
func NewCatalogService(source string, catalogRepo repo.CatalogRepository, logger *zap.Logger) (CatalogService, error) {
	if source == config.CatalogSourceMySQL && catalogRepo == nil {
		return nil, ErrRepositoryRequired
	}
	return &catalogService{
		source: source,
		repo:   catalogRepo,
		logger: logger,
		stores: make(map[string]*catalog.Store),
	}, nil
}

// Snapshot 返回缓存的快照，不存在时加载
func (s *catalogService) Snapshot(ctx context.Context, screen string) (*catalog.Store, error) {
	profile, err := catalog.ProfileByName(screen)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[profile.Name]; ok {
		return store, nil
	}
	return s.load(ctx, profile, false)
}

// Reload 强制重新加载快照
func (s *catalogService) Reload(ctx context.Context, screen string) (*catalog.Store, error) {
	profile, err := catalog.ProfileByName(screen)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.load(ctx, profile, true)
	if err != nil {
		if _, ok := s.stores[profile.Name]; ok {
			s.logger.Warn("catalog reload failed, keeping previous snapshot",
				zap.String("screen", profile.Name),
				zap.Error(err),
			)
		}
		return nil, err
	}
	return store, nil
}

// load 按来源读取条目并构建快照，成功后才替换内存中的快照。调用方持有锁。
// refresh 为 true 时绕过仓储缓存。
func (s *catalogService) load(ctx context.Context, profile catalog.Profile, refresh bool) (*catalog.Store, error) {
	var (
		store *catalog.Store
		err   error
	)
	if s.source == config.CatalogSourceMySQL {
		read := s.repo.List
		if refresh {
			read = s.repo.Refresh
		}
		entries, lerr := read(ctx, profile.Name)
		if lerr != nil {
			return nil, fmt.Errorf("failed to load catalog %s: %w", profile.Name, lerr)
		}
		store, err = catalog.NewStore(entries, profile)
	} else {
		store, err = catalog.NewSeedStore(profile)
	}
	if err != nil {
		s.logger.Error("catalog snapshot rejected",
			zap.String("screen", profile.Name),
			zap.String("source", s.source),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to build catalog %s: %w", profile.Name, err)
	}

	s.stores[profile.Name] = store
	s.logger.Info("catalog snapshot loaded",
		zap.String("screen", profile.Name),
		zap.String("source", s.source),
		zap.Int("entries", store.Len()),
		zap.Uint64("version", store.Version()),
	)
	return store, nil
}

// Seed 写入两个页面的内置样例数据
func (s *catalogService) Seed(ctx context.Context) error {
	if s.repo == nil {
		return ErrRepositoryRequired
	}
	for _, screen := range []string{catalog.ProfileMarket, catalog.ProfileActivity} {
		entries := catalog.MarketSeed()
		if screen == catalog.ProfileActivity {
			entries = catalog.ActivitySeed()
		}
		if err := s.repo.ReplaceAll(ctx, screen, entries); err != nil {
			return fmt.Errorf("failed to seed catalog %s: %w", screen, err)
		}
		s.logger.Info("catalog seeded", zap.String("screen", screen), zap.Int("entries", len(entries)))
	}

	s.mu.Lock()
	s.stores = make(map[string]*catalog.Store)
	s.mu.Unlock()
	return nil
}
