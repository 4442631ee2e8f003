package domain

import (
	"errors"
	"fmt"
)

// OptionAll 为保留哨兵值，表示该字段不做限制，必须位于选项目录首位
const OptionAll = "all"

// Field 定义可过滤字段
type Field string

const (
	FieldGift          Field = "gift"
	FieldType          Field = "type"
	FieldSort          Field = "sort"
	FieldPriceRange    Field = "price_range"
	FieldQuantityRange Field = "quantity_range"
	FieldExactGiftOnly Field = "exact_gift_only"
	FieldShowImproved  Field = "show_improved"
)

// Surface 定义可独立打开/关闭的过滤编辑界面
type Surface string

const (
	SurfaceGift     Surface = "gift"
	SurfaceType     Surface = "type"
	SurfaceSort     Surface = "sort"
	SurfaceAdvanced Surface = "advanced"
)

// ParseSurface 解析过滤界面名称
func ParseSurface(s string) (Surface, error) {
	switch Surface(s) {
	case SurfaceGift, SurfaceType, SurfaceSort, SurfaceAdvanced:
		return Surface(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSurface, s)
}

// IsBasic 判断界面是否编辑基础过滤状态（礼物/类型/排序）
func (s Surface) IsBasic() bool {
	return s == SurfaceGift || s == SurfaceType || s == SurfaceSort
}

// Field 返回基础界面对应的字段
func (s Surface) Field() Field {
	switch s {
	case SurfaceGift:
		return FieldGift
	case SurfaceType:
		return FieldType
	case SurfaceSort:
		return FieldSort
	}
	return ""
}

// 排序键
const (
	SortDateNew    = "date-new"
	SortDateOld    = "date-old"
	SortPriceAsc   = "price-asc"
	SortPriceDesc  = "price-desc"
	SortUnitPrice  = "unit-price"
	SortAmountAsc  = "amount-asc"
	SortAmountDesc = "amount-desc"
	SortVolumeAsc  = "volume-asc"
	SortVolumeDesc = "volume-desc"
)

// 类型过滤取值
const (
	TypeInstant = string(ListingKindInstant)
	TypeDelayed = string(ListingKindDelayed)
)

// 过滤相关错误
var (
	ErrInvalidOption      = errors.New("invalid option")
	ErrSurfaceNotOpen     = errors.New("filter surface is not open")
	ErrSurfaceUnavailable = errors.New("filter surface is not available for category")
	ErrUnknownSurface     = errors.New("unknown filter surface")
	ErrUnknownField       = errors.New("unknown filter field")
)

// InvalidOptionError 表示传入的选项不属于字段的选项目录
type InvalidOptionError struct {
	Field Field
	Value string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid option %q for field %s", e.Value, e.Field)
}

// Is 使 errors.Is(err, ErrInvalidOption) 成立
func (e *InvalidOptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// FilterOption 表示选项目录中的一项
type FilterOption struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	PriceHint   string `json:"price_hint,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

// OptionCatalog 为某个字段的固定有序选项列表，只读配置
type OptionCatalog struct {
	Field   Field          `json:"field"`
	Options []FilterOption `json:"options"`
}

// Has 判断 id 是否属于目录
func (c OptionCatalog) Has(id string) bool {
	for _, opt := range c.Options {
		if opt.ID == id {
			return true
		}
	}
	return false
}

// Label 返回 id 对应的展示名称
func (c OptionCatalog) Label(id string) (string, bool) {
	for _, opt := range c.Options {
		if opt.ID == id {
			return opt.Label, true
		}
	}
	return "", false
}

// Clone 返回目录的拷贝
func (c OptionCatalog) Clone() OptionCatalog {
	return OptionCatalog{Field: c.Field, Options: append([]FilterOption{}, c.Options...)}
}

// Validate 校验目录：id 唯一；礼物与类型目录首项必须为 "all"
func (c OptionCatalog) Validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("option catalog %s is empty", c.Field)
	}
	if (c.Field == FieldGift || c.Field == FieldType) && c.Options[0].ID != OptionAll {
		return fmt.Errorf("option catalog %s must start with %q", c.Field, OptionAll)
	}
	seen := make(map[string]struct{}, len(c.Options))
	for i, opt := range c.Options {
		if opt.ID == "" {
			return fmt.Errorf("option catalog %s has empty id at index %d", c.Field, i)
		}
		if _, dup := seen[opt.ID]; dup {
			return fmt.Errorf("option catalog %s has duplicate id %q", c.Field, opt.ID)
		}
		if opt.ID == OptionAll && i != 0 {
			return fmt.Errorf("option catalog %s has %q at index %d", c.Field, OptionAll, i)
		}
		seen[opt.ID] = struct{}{}
	}
	return nil
}

// FilterState 为基础过滤状态
type FilterState struct {
	GiftID string `json:"gift_id"`
	TypeID string `json:"type_id"`
	SortID string `json:"sort_id"`
}

// Get 读取字段值
func (f FilterState) Get(field Field) (string, error) {
	switch field {
	case FieldGift:
		return f.GiftID, nil
	case FieldType:
		return f.TypeID, nil
	case FieldSort:
		return f.SortID, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
}

// With 返回替换了某个字段后的新状态
func (f FilterState) With(field Field, value string) (FilterState, error) {
	switch field {
	case FieldGift:
		f.GiftID = value
	case FieldType:
		f.TypeID = value
	case FieldSort:
		f.SortID = value
	default:
		return f, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return f, nil
}

// Range 为闭区间 [Min, Max]
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains 判断 v 是否落在闭区间内
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Normalize 先在 Min > Max 时交换两端，再把两端钳制到 bounds 内
func (r Range) Normalize(bounds Range) Range {
	if r.Min > r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return Range{Min: clamp(r.Min, bounds), Max: clamp(r.Max, bounds)}
}

func clamp(v float64, bounds Range) float64 {
	if v < bounds.Min {
		return bounds.Min
	}
	if v > bounds.Max {
		return bounds.Max
	}
	return v
}

// 高级过滤的数值域
var (
	PriceBounds    = Range{Min: 0, Max: 100000}
	QuantityBounds = Range{Min: 1, Max: 1000}
)

// AdvancedFilterState 为高级（数值区间）过滤状态
type AdvancedFilterState struct {
	PriceRange    Range `json:"price_range"`
	QuantityRange Range `json:"quantity_range"`
	ExactGiftOnly bool  `json:"exact_gift_only"`
	// ShowImproved 为 false 时隐藏改良条目
	ShowImproved bool `json:"show_improved"`
}

// Equal 判断两个高级过滤状态是否相同
func (a AdvancedFilterState) Equal(b AdvancedFilterState) bool {
	return a == b
}

// IsDefault 判断状态是否与默认值一致，用于高级过滤入口的"已修改"标记
func (a AdvancedFilterState) IsDefault(defaults AdvancedFilterState) bool {
	return a.Equal(defaults)
}

// Normalized 返回区间经过交换与钳制后的状态
func (a AdvancedFilterState) Normalized() AdvancedFilterState {
	a.PriceRange = a.PriceRange.Normalize(PriceBounds)
	a.QuantityRange = a.QuantityRange.Normalize(QuantityBounds)
	return a
}

// BoundsFor 返回区间字段的数值域
func BoundsFor(field Field) (Range, error) {
	switch field {
	case FieldPriceRange:
		return PriceBounds, nil
	case FieldQuantityRange:
		return QuantityBounds, nil
	}
	return Range{}, fmt.Errorf("%w: %s is not a range field", ErrUnknownField, field)
}
