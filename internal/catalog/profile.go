package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// 页面配置名称
const (
	ProfileMarket   = "market"
	ProfileActivity = "activity"
)

// ErrUnknownProfile 表示未知的页面配置名称
var ErrUnknownProfile = errors.New("unknown screen profile")

// Profile 描述一个浏览页面的配置：各分区可用的过滤界面、选项目录和默认状态
type Profile struct {
	Name            string                               `json:"name"`
	DefaultCategory domain.Category                      `json:"default_category"`
	Surfaces        map[domain.Category][]domain.Surface `json:"surfaces"`
	Gift            domain.OptionCatalog                 `json:"gift"`
	Type            domain.OptionCatalog                 `json:"type"`
	Sort            domain.OptionCatalog                 `json:"sort"`
	DefaultFilters  domain.FilterState                   `json:"default_filters"`
	DefaultAdvanced domain.AdvancedFilterState           `json:"default_advanced"`
	Bounds          map[domain.Field]domain.Range        `json:"bounds"`
}

// MarketProfile 返回市场页面配置
func MarketProfile() Profile {
	return Profile{
		Name:            ProfileMarket,
		DefaultCategory: domain.CategoryChannels,
		Surfaces: map[domain.Category][]domain.Surface{
			domain.CategoryChannels: {domain.SurfaceGift, domain.SurfaceType, domain.SurfaceSort, domain.SurfaceAdvanced},
			domain.CategoryGifts:    {},
		},
		Gift: giftOptions(),
		Type: typeOptions(),
		Sort: marketSortOptions(),
		DefaultFilters: domain.FilterState{
			GiftID: domain.OptionAll,
			TypeID: domain.OptionAll,
			SortID: domain.SortDateNew,
		},
		DefaultAdvanced: domain.AdvancedFilterState{
			PriceRange:    domain.Range{Min: 2.11, Max: 100000},
			QuantityRange: domain.Range{Min: 1, Max: 780},
		},
		Bounds: defaultBounds(),
	}
}

// ActivityProfile 返回活动页面配置。
// 活动页面没有高级过滤界面，默认区间取整个数值域，保证不会排除任何记录。
func ActivityProfile() Profile {
	return Profile{
		Name:            ProfileActivity,
		DefaultCategory: domain.CategoryChannels,
		Surfaces: map[domain.Category][]domain.Surface{
			domain.CategoryChannels: {domain.SurfaceGift, domain.SurfaceSort},
			domain.CategoryGifts:    {},
		},
		Gift: giftOptions(),
		Type: typeAllOnly(),
		Sort: activitySortOptions(),
		DefaultFilters: domain.FilterState{
			GiftID: domain.OptionAll,
			TypeID: domain.OptionAll,
			SortID: domain.SortDateNew,
		},
		DefaultAdvanced: domain.AdvancedFilterState{
			PriceRange:    domain.PriceBounds,
			QuantityRange: domain.QuantityBounds,
			ShowImproved:  true,
		},
		Bounds: defaultBounds(),
	}
}

// ProfileByName 按名称查找内置页面配置
func ProfileByName(name string) (Profile, error) {
	switch name {
	case ProfileMarket, "":
		return MarketProfile(), nil
	case ProfileActivity:
		return ActivityProfile(), nil
	}
	return Profile{}, fmt.Errorf("%w %q", ErrUnknownProfile, name)
}

func defaultBounds() map[domain.Field]domain.Range {
	return map[domain.Field]domain.Range{
		domain.FieldPriceRange:    domain.PriceBounds,
		domain.FieldQuantityRange: domain.QuantityBounds,
	}
}

// Options 返回字段的选项目录
func (p Profile) Options(field domain.Field) (domain.OptionCatalog, error) {
	switch field {
	case domain.FieldGift:
		return p.Gift, nil
	case domain.FieldType:
		return p.Type, nil
	case domain.FieldSort:
		return p.Sort, nil
	}
	return domain.OptionCatalog{}, fmt.Errorf("%w: %s has no option catalog", domain.ErrUnknownField, field)
}

// SurfaceAvailable 判断分区下是否提供该过滤界面
func (p Profile) SurfaceAvailable(surface domain.Surface, category domain.Category) bool {
	return slices.Contains(p.Surfaces[category], surface)
}

// Validate 校验配置的一致性：目录合法、默认值属于目录、默认区间已规整
func (p Profile) Validate() error {
	if !p.DefaultCategory.Valid() {
		return fmt.Errorf("profile %s: invalid default category %q", p.Name, p.DefaultCategory)
	}
	for _, c := range []domain.OptionCatalog{p.Gift, p.Type, p.Sort} {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", p.Name, err)
		}
	}
	for _, field := range []domain.Field{domain.FieldGift, domain.FieldType, domain.FieldSort} {
		value, _ := p.DefaultFilters.Get(field)
		opts, _ := p.Options(field)
		if !opts.Has(value) {
			return fmt.Errorf("profile %s: default %s %q not in catalog", p.Name, field, value)
		}
	}
	if p.DefaultAdvanced.Normalized() != p.DefaultAdvanced {
		return fmt.Errorf("profile %s: default advanced ranges are outside domain bounds", p.Name)
	}
	return nil
}

// Clone 返回配置的深拷贝
func (p Profile) Clone() Profile {
	out := p
	out.Surfaces = make(map[domain.Category][]domain.Surface, len(p.Surfaces))
	for c, s := range p.Surfaces {
		out.Surfaces[c] = append([]domain.Surface{}, s...)
	}
	out.Gift = p.Gift.Clone()
	out.Type = p.Type.Clone()
	out.Sort = p.Sort.Clone()
	out.Bounds = make(map[domain.Field]domain.Range, len(p.Bounds))
	for f, r := range p.Bounds {
		out.Bounds[f] = r
	}
	return out
}
