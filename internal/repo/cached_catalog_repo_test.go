package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MorseWayne/gift_market/internal/cache"
	"github.com/MorseWayne/gift_market/internal/domain"
)

type fakeCatalogRepo struct {
	snapshots map[string][]domain.CatalogEntry
	listCalls int
	err       error
}

func (f *fakeCatalogRepo) List(_ context.Context, screen string) ([]domain.CatalogEntry, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return domain.CloneEntries(f.snapshots[screen]), nil
}

func (f *fakeCatalogRepo) Refresh(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	return f.List(ctx, screen)
}

func (f *fakeCatalogRepo) Count(_ context.Context, screen string) (int64, error) {
	return int64(len(f.snapshots[screen])), nil
}

func (f *fakeCatalogRepo) ReplaceAll(_ context.Context, screen string, entries []domain.CatalogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.snapshots[screen] = domain.CloneEntries(entries)
	return nil
}

func sampleEntries() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{
			ID:         "18459",
			Category:   domain.CategoryChannels,
			Label:      "Durov Glasses x3",
			CreatedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
			PriceUnits: 30,
			Quantity:   3,
			Tags:       []string{"Durov Glasses"},
			SubItems:   []domain.SubItem{{Name: "Durov Glasses", Quantity: 3, MediaRef: "coconut.svg"}},
			Kind:       domain.ListingKindInstant,
		},
	}
}

func TestCachedCatalogRepository_ListUsesCache(t *testing.T) {
	ctx := context.Background()
	inner := &fakeCatalogRepo{snapshots: map[string][]domain.CatalogEntry{"market": sampleEntries()}}
	r := NewCachedCatalogRepository(inner, cache.NewMemoryCache(), time.Minute)

	first, err := r.List(ctx, "market")
	require.NoError(t, err)
	second, err := r.List(ctx, "market")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.listCalls)
	require.Len(t, second, len(first))
	assert.Equal(t, "18459", second[0].ID)
	assert.Equal(t, first[0].SubItems, second[0].SubItems)
	assert.True(t, second[0].CreatedAt.Equal(first[0].CreatedAt))
}

func TestCachedCatalogRepository_ReplaceAllInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &fakeCatalogRepo{snapshots: map[string][]domain.CatalogEntry{"market": sampleEntries()}}
	r := NewCachedCatalogRepository(inner, cache.NewMemoryCache(), time.Minute)

	_, err := r.List(ctx, "market")
	require.NoError(t, err)

	require.NoError(t, r.ReplaceAll(ctx, "market", nil))
	entries, err := r.List(ctx, "market")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.listCalls)
	assert.Empty(t, entries)
}

func TestCachedCatalogRepository_NullCacheAlwaysHitsSource(t *testing.T) {
	ctx := context.Background()
	inner := &fakeCatalogRepo{snapshots: map[string][]domain.CatalogEntry{"market": sampleEntries()}}
	r := NewCachedCatalogRepository(inner, cache.NewNullCache(), time.Minute)

	for range 3 {
		_, err := r.List(ctx, "market")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.listCalls)

	count, err := r.Count(ctx, "market")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestCachedCatalogRepository_SourceError(t *testing.T) {
	boom := errors.New("db down")
	inner := &fakeCatalogRepo{snapshots: map[string][]domain.CatalogEntry{}, err: boom}
	r := NewCachedCatalogRepository(inner, cache.NewMemoryCache(), time.Minute)

	_, err := r.List(context.Background(), "market")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.ReplaceAll(context.Background(), "market", nil), boom)
}

func TestCachedCatalogRepository_RefreshBypassesCache(t *testing.T) {
	ctx := context.Background()
	inner := &fakeCatalogRepo{snapshots: map[string][]domain.CatalogEntry{"market": sampleEntries()}}
	r := NewCachedCatalogRepository(inner, cache.NewMemoryCache(), time.Minute)

	_, err := r.List(ctx, "market")
	require.NoError(t, err)

	updated := sampleEntries()
	updated[0].PriceUnits = 45
	inner.snapshots["market"] = updated

	refreshed, err := r.Refresh(ctx, "market")
	require.NoError(t, err)
	require.Len(t, refreshed, 1)
	assert.Equal(t, 45.0, refreshed[0].PriceUnits)
	assert.Equal(t, 2, inner.listCalls)

	cached, err := r.List(ctx, "market")
	require.NoError(t, err)
	assert.Equal(t, 45.0, cached[0].PriceUnits, "refresh rewrites the cache entry")
	assert.Equal(t, 2, inner.listCalls)

	inner.err = errors.New("db down")
	_, err = r.Refresh(ctx, "market")
	require.Error(t, err)
	cached, err = r.List(ctx, "market")
	require.NoError(t, err)
	assert.Equal(t, 45.0, cached[0].PriceUnits, "a failed refresh keeps the cached entry")
}
