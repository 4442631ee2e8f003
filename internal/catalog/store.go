// Package catalog 提供只读的目录快照存储以及内置的页面配置与样例数据。
package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/MorseWayne/gift_market/internal/domain"
)

var storeVersion atomic.Uint64

// Store 为一次加载得到的目录快照，创建后不可变，可在 goroutine 之间共享
type Store struct {
	entries []domain.CatalogEntry
	profile Profile
	version uint64
}

// NewStore 校验并深拷贝条目，按目录顺序分配 Ref
func NewStore(entries []domain.CatalogEntry, profile Profile) (*Store, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	copied := domain.CloneEntries(entries)
	for i := range copied {
		if err := copied[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		copied[i].Ref = i
	}
	return &Store{
		entries: copied,
		profile: profile.Clone(),
		version: storeVersion.Add(1),
	}, nil
}

// NewSeedStore 使用内置样例数据创建指定页面的目录快照
func NewSeedStore(profile Profile) (*Store, error) {
	switch profile.Name {
	case ProfileActivity:
		return NewStore(ActivitySeed(), profile)
	default:
		return NewStore(MarketSeed(), profile)
	}
}

// Entries 返回快照中全部条目的拷贝，保持目录顺序
func (s *Store) Entries() []domain.CatalogEntry {
	return domain.CloneEntries(s.entries)
}

// View 返回内部条目切片，调用方只能读取，不得修改
func (s *Store) View() []domain.CatalogEntry {
	return s.entries
}

// Len 返回条目数量
func (s *Store) Len() int {
	return len(s.entries)
}

// Entry 按 Ref 返回条目拷贝
func (s *Store) Entry(ref int) (domain.CatalogEntry, bool) {
	if ref < 0 || ref >= len(s.entries) {
		return domain.CatalogEntry{}, false
	}
	return s.entries[ref].Clone(), true
}

// Profile 返回页面配置的拷贝
func (s *Store) Profile() Profile {
	return s.profile.Clone()
}

// Options 返回字段的选项目录拷贝
func (s *Store) Options(field domain.Field) (domain.OptionCatalog, error) {
	c, err := s.profile.Options(field)
	if err != nil {
		return domain.OptionCatalog{}, err
	}
	return c.Clone(), nil
}

// Version 标识快照，每次 NewStore 都会得到新的版本号
func (s *Store) Version() uint64 {
	return s.version
}
