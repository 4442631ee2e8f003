// Package domain 定义市场目录相关的业务领域模型和核心业务规则。
// 领域模型是业务逻辑的核心，独立于外部依赖（数据库、HTTP等）。
package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Category 定义目录分区类型，过滤和排序永远不会跨分区
type Category string

const (
	CategoryGifts    Category = "gifts"    // 礼物
	CategoryChannels Category = "channels" // 频道
)

// Valid 判断分区是否为已知取值
func (c Category) Valid() bool {
	return c == CategoryGifts || c == CategoryChannels
}

// ParseCategory 解析分区字符串
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// ListingKind 定义挂单的成交方式，即"类型"过滤字段
type ListingKind string

const (
	ListingKindInstant ListingKind = "instant" // 即时成交
	ListingKindDelayed ListingKind = "delayed" // 等待成交
)

// EventStatus 定义活动记录的成交方向
type EventStatus string

const (
	EventStatusPurchase EventStatus = "purchase" // 买入
	EventStatusSale     EventStatus = "sale"     // 卖出
)

// SubItem 表示组合挂单中的单个物品
type SubItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	MediaRef string `json:"media_ref"`
}

// EntryKey 为展示和日志使用的 (分区, ID) 组合
type EntryKey struct {
	Category Category `json:"category"`
	ID       string   `json:"id"`
}

func (k EntryKey) String() string {
	return string(k.Category) + "/" + k.ID
}

// CatalogEntry 表示一条可交易挂单或一条市场活动记录
type CatalogEntry struct {
	// Ref 为条目在快照中的位置，由目录存储在加载时分配，是选择状态使用的身份标识。
	// ID 在样例数据中并不唯一，不能用作身份。
	Ref        int         `json:"ref"`
	ID         string      `json:"id"`
	Category   Category    `json:"category"`
	Label      string      `json:"label"`
	CreatedAt  time.Time   `json:"created_at"`
	PriceUnits float64     `json:"price_units"`
	Quantity   int         `json:"quantity"`
	Tags       []string    `json:"tags"`
	Improved   bool        `json:"improved"`
	SubItems   []SubItem   `json:"sub_items,omitempty"`
	Kind       ListingKind `json:"kind,omitempty"`
	Status     EventStatus `json:"status,omitempty"`
	TimeLeft   string      `json:"time_left,omitempty"`
	Multiplier string      `json:"multiplier,omitempty"`
}

// 条目校验错误
var (
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Key 返回条目的 (分区, ID) 组合
func (e *CatalogEntry) Key() EntryKey {
	return EntryKey{Category: e.Category, ID: e.ID}
}

// IsBundle 判断条目是否为包含多种物品的组合
func (e *CatalogEntry) IsBundle() bool {
	return len(e.SubItems) > 1
}

// Validate 校验条目的数据约束
func (e *CatalogEntry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %s has unknown category %q", ErrInvalidEntry, e.ID, e.Category)
	}
	if math.IsNaN(e.PriceUnits) || math.IsInf(e.PriceUnits, 0) || e.PriceUnits < 0 {
		return fmt.Errorf("%w: %s price must be a finite non-negative number", ErrInvalidEntry, e.ID)
	}
	if e.Quantity < 0 {
		return fmt.Errorf("%w: %s quantity cannot be negative", ErrInvalidEntry, e.ID)
	}
	if len(e.SubItems) > 0 {
		sum := 0
		for _, item := range e.SubItems {
			if item.Quantity < 0 {
				return fmt.Errorf("%w: %s sub item %q quantity cannot be negative", ErrInvalidEntry, e.ID, item.Name)
			}
			sum += item.Quantity
		}
		if sum != e.Quantity {
			return fmt.Errorf("%w: %s quantity %d does not match sub items total %d", ErrInvalidEntry, e.ID, e.Quantity, sum)
		}
	}
	return nil
}

// Clone 返回条目的深拷贝
func (e CatalogEntry) Clone() CatalogEntry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.SubItems != nil {
		out.SubItems = append([]SubItem(nil), e.SubItems...)
	}
	return out
}

// CloneEntries 深拷贝条目列表，nil 输入返回空切片
func CloneEntries(entries []CatalogEntry) []CatalogEntry {
	out := make([]CatalogEntry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}

// CatalogSnapshot 为目录接口返回的快照载荷
type CatalogSnapshot struct {
	Screen  string         `json:"screen"`
	Version uint64         `json:"version"`
	Entries []CatalogEntry `json:"entries"`
}
