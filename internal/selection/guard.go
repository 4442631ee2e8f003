// Package selection 维护详情视图当前选中的条目，
// 在投影变化后自动清除已不可见的选择。
package selection

import (
	"errors"
	"fmt"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// ErrNotInProjection 表示要选中的条目不在当前投影中
var ErrNotInProjection = errors.New("entry is not in the current projection")

// ProjectionChanged 为查询结果重新计算后发出的事件
type ProjectionChanged struct {
	Category domain.Category
	Entries  []domain.CatalogEntry
}

// contains 按 Ref 判断条目是否在投影中
func (p ProjectionChanged) contains(ref int) bool {
	for i := range p.Entries {
		if p.Entries[i].Ref == ref {
			return true
		}
	}
	return false
}

// Guard 持有选中状态，非并发安全
type Guard struct {
	selected *domain.CatalogEntry
	current  ProjectionChanged
}

// NewGuard 创建选择守卫
func NewGuard() *Guard {
	return &Guard{}
}

// Select 选中当前投影中的条目
func (g *Guard) Select(entry domain.CatalogEntry) error {
	if !g.current.contains(entry.Ref) {
		return fmt.Errorf("%w: %s (ref %d)", ErrNotInProjection, entry.Key(), entry.Ref)
	}
	e := entry.Clone()
	g.selected = &e
	return nil
}

// Clear 清除选择
func (g *Guard) Clear() {
	g.selected = nil
}

// Selected 返回选中条目的拷贝
func (g *Guard) Selected() (domain.CatalogEntry, bool) {
	if g.selected == nil {
		return domain.CatalogEntry{}, false
	}
	return g.selected.Clone(), true
}

// OnProjectionChanged 记录新投影；选中条目不在其中时清除选择并返回 true
func (g *Guard) OnProjectionChanged(ev ProjectionChanged) bool {
	g.current = ProjectionChanged{Category: ev.Category, Entries: domain.CloneEntries(ev.Entries)}
	if g.selected == nil {
		return false
	}
	if g.selected.Category == ev.Category && ev.contains(g.selected.Ref) {
		return false
	}
	g.selected = nil
	return true
}
