// Package filter 实现过滤状态的草稿/提交两阶段协议。
//
// 每个过滤界面打开时把已提交状态复制为草稿，编辑只作用于草稿，
// Apply 时整体提交，Cancel 时丢弃。gift/type/sort 三个界面共享基础状态槽，
// advanced 界面使用高级状态槽。
package filter

import (
	"fmt"
	"math"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
)

// slot 保存一类过滤状态的已提交值与草稿值
type slot[T comparable] struct {
	committed T
	draft     T
	defaults  T
}

func newSlot[T comparable](defaults T) slot[T] {
	return slot[T]{committed: defaults, draft: defaults, defaults: defaults}
}

func (s *slot[T]) begin() {
	s.draft = s.committed
}

// commit 提交草稿，返回已提交值是否发生变化
func (s *slot[T]) commit() bool {
	changed := s.committed != s.draft
	s.committed = s.draft
	return changed
}

func (s *slot[T]) discard() {
	s.draft = s.committed
}

// ChangeSet 描述一次 Apply 的结果
type ChangeSet struct {
	Surface         domain.Surface
	FiltersChanged  bool
	AdvancedChanged bool
}

// Changed 判断已提交状态是否发生变化
func (c ChangeSet) Changed() bool {
	return c.FiltersChanged || c.AdvancedChanged
}

// Session 为单个界面上下文持有的过滤会话，非并发安全。
// gift、type、sort 三个基础界面共用一份草稿，同一时刻只有一个界面打开，
// 打开任一界面都会从已提交状态重新复制草稿，未提交的修改随之丢弃。
type Session struct {
	profile  catalog.Profile
	basic    slot[domain.FilterState]
	advanced slot[domain.AdvancedFilterState]
	active   domain.Surface
}

// NewSession 以页面配置的默认值初始化会话
func NewSession(profile catalog.Profile) *Session {
	return &Session{
		profile:  profile,
		basic:    newSlot(profile.DefaultFilters),
		advanced: newSlot(profile.DefaultAdvanced.Normalized()),
	}
}

// Open 打开过滤界面，已提交状态复制为草稿。
// 已有其他界面打开时，先丢弃其草稿。
func (s *Session) Open(surface domain.Surface, category domain.Category) error {
	if _, err := domain.ParseSurface(string(surface)); err != nil {
		return err
	}
	if !s.profile.SurfaceAvailable(surface, category) {
		return fmt.Errorf("%w: %s in %s", domain.ErrSurfaceUnavailable, surface, category)
	}
	if s.active != "" {
		s.Cancel()
	}
	if surface.IsBasic() {
		s.basic.begin()
	} else {
		s.advanced.begin()
	}
	s.active = surface
	return nil
}

func (s *Session) requireOpen(surface domain.Surface) error {
	if s.active == "" || s.active != surface {
		return fmt.Errorf("%w: %s", domain.ErrSurfaceNotOpen, surface)
	}
	return nil
}

// Update 修改基础界面的草稿字段，取值必须属于字段的选项目录
func (s *Session) Update(surface domain.Surface, field domain.Field, value string) error {
	if err := s.requireOpen(surface); err != nil {
		return err
	}
	if !surface.IsBasic() || surface.Field() != field {
		return fmt.Errorf("%w: %s on surface %s", domain.ErrUnknownField, field, surface)
	}
	opts, err := s.profile.Options(field)
	if err != nil {
		return err
	}
	if !opts.Has(value) {
		return &domain.InvalidOptionError{Field: field, Value: value}
	}
	next, err := s.basic.draft.With(field, value)
	if err != nil {
		return err
	}
	s.basic.draft = next
	return nil
}

// UpdateRange 修改高级界面的区间草稿：min > max 时交换，越界时钳制
func (s *Session) UpdateRange(surface domain.Surface, field domain.Field, lo, hi float64) error {
	if err := s.requireOpen(surface); err != nil {
		return err
	}
	if surface != domain.SurfaceAdvanced {
		return fmt.Errorf("%w: %s on surface %s", domain.ErrUnknownField, field, surface)
	}
	bounds, err := domain.BoundsFor(field)
	if err != nil {
		return err
	}
	if math.IsNaN(lo) {
		lo = bounds.Min
	}
	if math.IsNaN(hi) {
		hi = bounds.Max
	}
	r := domain.Range{Min: lo, Max: hi}.Normalize(bounds)
	switch field {
	case domain.FieldPriceRange:
		s.advanced.draft.PriceRange = r
	case domain.FieldQuantityRange:
		s.advanced.draft.QuantityRange = r
	}
	return nil
}

// SetFlag 修改高级界面的开关草稿
func (s *Session) SetFlag(surface domain.Surface, field domain.Field, on bool) error {
	if err := s.requireOpen(surface); err != nil {
		return err
	}
	if surface != domain.SurfaceAdvanced {
		return fmt.Errorf("%w: %s on surface %s", domain.ErrUnknownField, field, surface)
	}
	switch field {
	case domain.FieldExactGiftOnly:
		s.advanced.draft.ExactGiftOnly = on
	case domain.FieldShowImproved:
		s.advanced.draft.ShowImproved = on
	default:
		return fmt.Errorf("%w: %s is not a flag", domain.ErrUnknownField, field)
	}
	return nil
}

// ResetSurface 将草稿恢复为默认值：基础界面只恢复自身字段，高级界面恢复全部高级状态。
// 不影响已提交状态。
func (s *Session) ResetSurface(surface domain.Surface) error {
	if err := s.requireOpen(surface); err != nil {
		return err
	}
	if surface == domain.SurfaceAdvanced {
		s.advanced.draft = s.advanced.defaults
		return nil
	}
	field := surface.Field()
	def, err := s.profile.DefaultFilters.Get(field)
	if err != nil {
		return err
	}
	next, err := s.basic.draft.With(field, def)
	if err != nil {
		return err
	}
	s.basic.draft = next
	return nil
}

// Apply 校验并提交当前界面的草稿，然后关闭界面。
// 没有打开的界面时为空操作。
func (s *Session) Apply() (ChangeSet, error) {
	if s.active == "" {
		return ChangeSet{}, nil
	}
	cs := ChangeSet{Surface: s.active}
	if s.active.IsBasic() {
		if err := s.validateBasic(s.basic.draft); err != nil {
			return ChangeSet{}, err
		}
		cs.FiltersChanged = s.basic.commit()
	} else {
		s.advanced.draft = s.advanced.draft.Normalized()
		cs.AdvancedChanged = s.advanced.commit()
	}
	s.active = ""
	return cs, nil
}

func (s *Session) validateBasic(f domain.FilterState) error {
	for _, field := range []domain.Field{domain.FieldGift, domain.FieldType, domain.FieldSort} {
		value, _ := f.Get(field)
		opts, err := s.profile.Options(field)
		if err != nil {
			return err
		}
		if !opts.Has(value) {
			return &domain.InvalidOptionError{Field: field, Value: value}
		}
	}
	return nil
}

// Cancel 丢弃草稿并关闭界面，已提交状态不变
func (s *Session) Cancel() {
	switch {
	case s.active == "":
		return
	case s.active.IsBasic():
		s.basic.discard()
	default:
		s.advanced.discard()
	}
	s.active = ""
}

// Committed 返回已提交的基础与高级状态
func (s *Session) Committed() (domain.FilterState, domain.AdvancedFilterState) {
	return s.basic.committed, s.advanced.committed
}

// Draft 返回草稿状态
func (s *Session) Draft() (domain.FilterState, domain.AdvancedFilterState) {
	return s.basic.draft, s.advanced.draft
}

// Defaults 返回默认状态
func (s *Session) Defaults() (domain.FilterState, domain.AdvancedFilterState) {
	return s.basic.defaults, s.advanced.defaults
}

// IsOpen 判断是否有界面处于打开状态
func (s *Session) IsOpen() bool {
	return s.active != ""
}

// ActiveSurface 返回当前打开的界面，未打开时返回空字符串
func (s *Session) ActiveSurface() domain.Surface {
	return s.active
}

// HasAdvancedChanges 判断已提交的高级状态是否偏离默认值
func (s *Session) HasAdvancedChanges() bool {
	return !s.advanced.committed.IsDefault(s.advanced.defaults)
}
