package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/cache"
	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/config"
	"github.com/MorseWayne/gift_market/internal/domain"
	"github.com/MorseWayne/gift_market/internal/repo"
)

func TestCatalogService_SeedSource(t *testing.T) {
	svc, err := NewCatalogService(config.CatalogSourceSeed, nil, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	market, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.MarketSeed()), market.Len())

	again, err := svc.Snapshot(ctx, "")
	require.NoError(t, err)
	assert.Same(t, market, again, "empty screen resolves to the cached market snapshot")

	activity, err := svc.Snapshot(ctx, catalog.ProfileActivity)
	require.NoError(t, err)
	assert.Equal(t, catalog.ProfileActivity, activity.Profile().Name)

	_, err = svc.Snapshot(ctx, "unknown")
	assert.ErrorIs(t, err, catalog.ErrUnknownProfile)

	assert.ErrorIs(t, svc.Seed(ctx), ErrRepositoryRequired)
}

func TestCatalogService_MySQLSourceRequiresRepo(t *testing.T) {
	_, err := NewCatalogService(config.CatalogSourceMySQL, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestCatalogService_SeedThenLoadFromRepository(t *testing.T) {
	mock := newMockCatalogRepository()
	svc, err := NewCatalogService(config.CatalogSourceMySQL, mock, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	empty, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Zero(t, empty.Len())

	require.NoError(t, svc.Seed(ctx))
	assert.Len(t, mock.snapshots[catalog.ProfileActivity], len(catalog.ActivitySeed()))

	market, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.MarketSeed()), market.Len())
	assert.NotEqual(t, empty.Version(), market.Version(), "reloaded snapshot carries a new version")
	assert.Equal(t, 2, mock.listCalls[catalog.ProfileMarket])

	_, err = svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.listCalls[catalog.ProfileMarket], "cached snapshot does not hit the repository")
}

func TestCatalogService_ReloadAndErrors(t *testing.T) {
	mock := newMockCatalogRepository()
	svc, err := NewCatalogService(config.CatalogSourceMySQL, mock, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	mock.snapshots[catalog.ProfileMarket] = []domain.CatalogEntry{
		{ID: "bad", Category: domain.CategoryChannels, PriceUnits: -1},
	}
	_, err = svc.Snapshot(ctx, catalog.ProfileMarket)
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)

	mock.snapshots[catalog.ProfileMarket] = catalog.MarketSeed()
	store, err := svc.Reload(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Equal(t, len(catalog.MarketSeed()), store.Len())

	boom := errors.New("db down")
	mock.listErr = boom
	_, err = svc.Reload(ctx, catalog.ProfileMarket)
	assert.ErrorIs(t, err, boom)
}

func TestCatalogService_FailedReloadKeepsSnapshot(t *testing.T) {
	mock := newMockCatalogRepository()
	mock.snapshots[catalog.ProfileMarket] = catalog.MarketSeed()
	svc, err := NewCatalogService(config.CatalogSourceMySQL, mock, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	before, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)

	mock.listErr = errors.New("db down")
	_, err = svc.Reload(ctx, catalog.ProfileMarket)
	require.Error(t, err)

	after, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Same(t, before, after)

	mock.snapshots[catalog.ProfileMarket] = []domain.CatalogEntry{
		{ID: "bad", Category: domain.CategoryChannels, PriceUnits: -1},
	}
	mock.listErr = nil
	_, err = svc.Reload(ctx, catalog.ProfileMarket)
	assert.ErrorIs(t, err, domain.ErrInvalidEntry)

	after, err = svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Same(t, before, after, "a rejected snapshot does not replace the previous one")
}

func TestCatalogService_ReloadBypassesCache(t *testing.T) {
	mock := newMockCatalogRepository()
	mock.snapshots[catalog.ProfileMarket] = catalog.MarketSeed()
	cached := repo.NewCachedCatalogRepository(mock, cache.NewMemoryCache(), time.Hour)
	svc, err := NewCatalogService(config.CatalogSourceMySQL, cached, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	before, err := svc.Snapshot(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	require.Equal(t, len(catalog.MarketSeed()), before.Len())

	mock.snapshots[catalog.ProfileMarket] = catalog.MarketSeed()[:1]
	reloaded, err := svc.Reload(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
	assert.NotEqual(t, before.Version(), reloaded.Version())
	assert.Equal(t, 2, mock.listCalls[catalog.ProfileMarket])

	entries, err := cached.List(ctx, catalog.ProfileMarket)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "reload refreshes the cached list")
	assert.Equal(t, 2, mock.listCalls[catalog.ProfileMarket])
}
