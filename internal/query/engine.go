// Package query 实现目录的过滤与排序管线。
// Run 为纯函数；Engine 在其之上按完整输入做记忆化。
package query

import (
	"sort"
	"sync"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// Derived 为条目的派生字段
type Derived struct {
	GiftIDs       map[string]struct{}
	TotalQuantity int
	UnitPrice     float64
}

// HasGift 判断派生礼物集合是否包含 id
func (d Derived) HasGift(id string) bool {
	_, ok := d.GiftIDs[id]
	return ok
}

// DeriveFields 计算条目的礼物 ID 集合、总数量和单价
func DeriveFields(e *domain.CatalogEntry) Derived {
	ids := make(map[string]struct{}, len(e.Tags))
	for _, tag := range e.Tags {
		ids[domain.NormalizeGiftID(tag)] = struct{}{}
	}
	unit := e.PriceUnits
	if e.Quantity > 0 {
		unit = e.PriceUnits / float64(e.Quantity)
	}
	return Derived{GiftIDs: ids, TotalQuantity: e.Quantity, UnitPrice: unit}
}

type prepared struct {
	entry   *domain.CatalogEntry
	derived Derived
}

// Run 依次执行分区、类型、改良、价格区间、数量区间、礼物过滤，最后稳定排序。
// 返回条目的深拷贝；结果为空时返回非 nil 的空切片。
func Run(entries []domain.CatalogEntry, category domain.Category, filters domain.FilterState, advanced domain.AdvancedFilterState) []domain.CatalogEntry {
	kept := make([]prepared, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.Category != category {
			continue
		}
		d := DeriveFields(e)
		if !matches(e, d, filters, advanced) {
			continue
		}
		kept = append(kept, prepared{entry: e, derived: d})
	}

	if less := lessFunc(filters.SortID, kept); less != nil {
		sort.SliceStable(kept, less)
	}

	out := make([]domain.CatalogEntry, len(kept))
	for i, p := range kept {
		out[i] = p.entry.Clone()
	}
	return out
}

func matches(e *domain.CatalogEntry, d Derived, filters domain.FilterState, advanced domain.AdvancedFilterState) bool {
	if filters.TypeID != domain.OptionAll && string(e.Kind) != filters.TypeID {
		return false
	}
	// 开关关闭时隐藏改良条目
	if !advanced.ShowImproved && e.Improved {
		return false
	}
	if !advanced.PriceRange.Contains(e.PriceUnits) {
		return false
	}
	if !advanced.QuantityRange.Contains(float64(d.TotalQuantity)) {
		return false
	}
	if filters.GiftID == domain.OptionAll {
		return true
	}
	if !d.HasGift(filters.GiftID) {
		return false
	}
	if advanced.ExactGiftOnly {
		return len(d.GiftIDs) == 1
	}
	return true
}

// lessFunc 返回排序比较函数，未知排序键返回 nil 表示保持目录顺序
func lessFunc(sortID string, items []prepared) func(i, j int) bool {
	switch sortID {
	case domain.SortDateNew:
		return func(i, j int) bool { return items[i].entry.CreatedAt.After(items[j].entry.CreatedAt) }
	case domain.SortDateOld:
		return func(i, j int) bool { return items[i].entry.CreatedAt.Before(items[j].entry.CreatedAt) }
	case domain.SortPriceAsc:
		return func(i, j int) bool { return items[i].entry.PriceUnits < items[j].entry.PriceUnits }
	case domain.SortPriceDesc:
		return func(i, j int) bool { return items[i].entry.PriceUnits > items[j].entry.PriceUnits }
	case domain.SortUnitPrice:
		return func(i, j int) bool { return items[i].derived.UnitPrice < items[j].derived.UnitPrice }
	case domain.SortAmountAsc, domain.SortVolumeAsc:
		return func(i, j int) bool { return items[i].derived.TotalQuantity < items[j].derived.TotalQuantity }
	case domain.SortAmountDesc, domain.SortVolumeDesc:
		return func(i, j int) bool { return items[i].derived.TotalQuantity > items[j].derived.TotalQuantity }
	}
	return nil
}

// Key 为记忆化使用的完整输入元组
type Key struct {
	Version  uint64
	Category domain.Category
	Filters  domain.FilterState
	Advanced domain.AdvancedFilterState
}

// Source 为 Engine 的目录来源，catalog.Store 实现了该接口
type Source interface {
	View() []domain.CatalogEntry
	Version() uint64
}

// Engine 在 Run 外包一层单条目记忆化：输入元组不变时复用上次结果，
// 每次返回的仍是独立拷贝
type Engine struct {
	mu     sync.Mutex
	last   Key
	result []domain.CatalogEntry
	valid  bool
	hits   int
	misses int
}

// NewEngine 创建查询引擎
func NewEngine() *Engine {
	return &Engine{}
}

// Project 计算 source 在给定分区和过滤状态下的投影
func (e *Engine) Project(src Source, category domain.Category, filters domain.FilterState, advanced domain.AdvancedFilterState) []domain.CatalogEntry {
	key := Key{Version: src.Version(), Category: category, Filters: filters, Advanced: advanced}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.valid && e.last == key {
		e.hits++
		return domain.CloneEntries(e.result)
	}
	e.misses++
	e.result = Run(src.View(), category, filters, advanced)
	e.last = key
	e.valid = true
	return domain.CloneEntries(e.result)
}

// Stats 返回命中与未命中次数
func (e *Engine) Stats() (hits, misses int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hits, e.misses
}

// Reset 清空记忆
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.valid = false
	e.result = nil
}
