// Package browse 把过滤会话、查询引擎、选择守卫和礼物搜索组合成一个浏览页面。
// Screen 由单个界面上下文独占，非并发安全。
package browse

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/MorseWayne/gift_market/internal/catalog"
	"github.com/MorseWayne/gift_market/internal/domain"
	"github.com/MorseWayne/gift_market/internal/filter"
	"github.com/MorseWayne/gift_market/internal/query"
	"github.com/MorseWayne/gift_market/internal/search"
	"github.com/MorseWayne/gift_market/internal/selection"
)

// Labels 为过滤卡片上展示的已提交选项名称
type Labels struct {
	Gift string `json:"gift"`
	Type string `json:"type"`
	Sort string `json:"sort"`
}

// Screen 为一个浏览页面
type Screen struct {
	store      *catalog.Store
	profile    catalog.Profile
	session    *filter.Session
	engine     *query.Engine
	guard      *selection.Guard
	picker     *search.Picker
	category   domain.Category
	projection []domain.CatalogEntry
	logger     *zap.Logger
}

// NewScreen 基于目录快照创建页面，并计算初始投影
func NewScreen(store *catalog.Store, logger *zap.Logger) *Screen {
	if logger == nil {
		logger = zap.NewNop()
	}
	profile := store.Profile()
	s := &Screen{
		store:    store,
		profile:  profile,
		session:  filter.NewSession(profile),
		engine:   query.NewEngine(),
		guard:    selection.NewGuard(),
		picker:   search.NewPicker(profile.Gift),
		category: profile.DefaultCategory,
		logger:   logger.With(zap.String("screen", profile.Name)),
	}
	s.recompute()
	return s
}

// Category 返回当前分区
func (s *Screen) Category() domain.Category {
	return s.category
}

// Surfaces 返回当前分区可用的过滤界面
func (s *Screen) Surfaces() []domain.Surface {
	return append([]domain.Surface{}, s.profile.Surfaces[s.category]...)
}

// SwitchCategory 切换分区：关闭打开的界面、清空礼物搜索，分区变化时清除选择
func (s *Screen) SwitchCategory(category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	s.session.Cancel()
	s.picker.Reset()
	if category == s.category {
		return nil
	}
	s.guard.Clear()
	s.logger.Debug("category switched",
		zap.String("from", string(s.category)),
		zap.String("to", string(category)))
	s.category = category
	s.recompute()
	return nil
}

// Open 打开过滤界面，打开礼物界面时清空搜索
func (s *Screen) Open(surface domain.Surface) error {
	if err := s.session.Open(surface, s.category); err != nil {
		return err
	}
	if surface == domain.SurfaceGift {
		s.picker.Reset()
	}
	s.logger.Debug("surface opened", zap.String("surface", string(surface)))
	return nil
}

// Update 修改基础界面草稿
func (s *Screen) Update(surface domain.Surface, field domain.Field, value string) error {
	return s.session.Update(surface, field, value)
}

// UpdateRange 修改高级界面区间草稿
func (s *Screen) UpdateRange(surface domain.Surface, field domain.Field, lo, hi float64) error {
	return s.session.UpdateRange(surface, field, lo, hi)
}

// SetFlag 修改高级界面开关草稿
func (s *Screen) SetFlag(surface domain.Surface, field domain.Field, on bool) error {
	return s.session.SetFlag(surface, field, on)
}

// ResetSurface 恢复界面草稿为默认值，重置礼物界面时同时清空搜索
func (s *Screen) ResetSurface(surface domain.Surface) error {
	if err := s.session.ResetSurface(surface); err != nil {
		return err
	}
	if surface == domain.SurfaceGift {
		s.picker.Reset()
	}
	return nil
}

// Apply 提交草稿并重新计算投影
func (s *Screen) Apply() (filter.ChangeSet, error) {
	cs, err := s.session.Apply()
	if err != nil {
		return cs, err
	}
	if cs.Changed() {
		f, adv := s.session.Committed()
		s.logger.Debug("filters applied",
			zap.String("surface", string(cs.Surface)),
			zap.Any("filters", f),
			zap.Any("advanced", adv))
		s.recompute()
	}
	return cs, nil
}

// Cancel 丢弃草稿并关闭界面
func (s *Screen) Cancel() {
	s.session.Cancel()
}

// ActiveSurface 返回打开的界面
func (s *Screen) ActiveSurface() domain.Surface {
	return s.session.ActiveSurface()
}

// Draft 返回草稿状态
func (s *Screen) Draft() (domain.FilterState, domain.AdvancedFilterState) {
	return s.session.Draft()
}

// Committed 返回已提交状态
func (s *Screen) Committed() (domain.FilterState, domain.AdvancedFilterState) {
	return s.session.Committed()
}

// Select 按 Ref 选中投影中的条目
func (s *Screen) Select(ref int) (domain.CatalogEntry, error) {
	for i := range s.projection {
		if s.projection[i].Ref == ref {
			if err := s.guard.Select(s.projection[i]); err != nil {
				return domain.CatalogEntry{}, err
			}
			return s.projection[i].Clone(), nil
		}
	}
	return domain.CatalogEntry{}, fmt.Errorf("%w: ref %d", selection.ErrNotInProjection, ref)
}

// ClearSelection 关闭详情视图
func (s *Screen) ClearSelection() {
	s.guard.Clear()
}

// Selection 返回当前选中的条目
func (s *Screen) Selection() (domain.CatalogEntry, bool) {
	return s.guard.Selected()
}

// Projection 返回当前投影的拷贝
func (s *Screen) Projection() []domain.CatalogEntry {
	return domain.CloneEntries(s.projection)
}

// SearchGifts 设置礼物搜索查询并返回匹配的选项
func (s *Screen) SearchGifts(q string) domain.OptionCatalog {
	s.picker.SetQuery(q)
	return s.picker.Results()
}

// Labels 返回已提交状态对应的选项名称
func (s *Screen) Labels() Labels {
	f, _ := s.session.Committed()
	return Labels{
		Gift: labelOr(s.profile.Gift, f.GiftID, "Все подарки"),
		Type: labelOr(s.profile.Type, f.TypeID, "Все"),
		Sort: labelOr(s.profile.Sort, f.SortID, "Дата"),
	}
}

func labelOr(c domain.OptionCatalog, id, fallback string) string {
	if l, ok := c.Label(id); ok {
		return l
	}
	return fallback
}

// HasAdvancedChanges 判断高级过滤是否偏离默认值
func (s *Screen) HasAdvancedChanges() bool {
	return s.session.HasAdvancedChanges()
}

func (s *Screen) recompute() {
	f, adv := s.session.Committed()
	s.projection = s.engine.Project(s.store, s.category, f, adv)
	if s.guard.OnProjectionChanged(selection.ProjectionChanged{Category: s.category, Entries: s.projection}) {
		s.logger.Debug("selection cleared", zap.Int("visible", len(s.projection)))
	}
}
