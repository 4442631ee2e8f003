package service

import (
	"context"
	"errors"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// Mock CatalogRepository for testing
type mockCatalogRepository struct {
	snapshots map[string][]domain.CatalogEntry
	listCalls map[string]int
	listErr   error
}

func newMockCatalogRepository() *mockCatalogRepository {
	return &mockCatalogRepository{
		snapshots: make(map[string][]domain.CatalogEntry),
		listCalls: make(map[string]int),
	}
}

func (m *mockCatalogRepository) List(_ context.Context, screen string) ([]domain.CatalogEntry, error) {
	m.listCalls[screen]++
	if m.listErr != nil {
		return nil, m.listErr
	}
	entries, ok := m.snapshots[screen]
	if !ok {
		return []domain.CatalogEntry{}, nil
	}
	return domain.CloneEntries(entries), nil
}

func (m *mockCatalogRepository) Refresh(ctx context.Context, screen string) ([]domain.CatalogEntry, error) {
	return m.List(ctx, screen)
}

func (m *mockCatalogRepository) Count(_ context.Context, screen string) (int64, error) {
	return int64(len(m.snapshots[screen])), nil
}

func (m *mockCatalogRepository) ReplaceAll(_ context.Context, screen string, entries []domain.CatalogEntry) error {
	if screen == "" {
		return errors.New("screen is required")
	}
	m.snapshots[screen] = domain.CloneEntries(entries)
	return nil
}
