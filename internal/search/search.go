// Package search 提供选项目录的标签搜索
package search

import (
	"strings"

	"github.com/MorseWayne/gift_market/internal/domain"
)

// Options 按标签子串（大小写无关）过滤选项目录。
// 查询为空时返回完整目录；不修改输入，也不保留任何状态。
func Options(catalog domain.OptionCatalog, query string) domain.OptionCatalog {
	needle := domain.FoldLabel(strings.TrimSpace(query))
	if needle == "" {
		return catalog.Clone()
	}
	out := domain.OptionCatalog{Field: catalog.Field, Options: make([]domain.FilterOption, 0, len(catalog.Options))}
	for _, opt := range catalog.Options {
		if strings.Contains(domain.FoldLabel(opt.Label), needle) {
			out.Options = append(out.Options, opt)
		}
	}
	return out
}

// Picker 为某个过滤界面保存当前查询字符串，每次取结果都从完整目录重新计算
type Picker struct {
	catalog domain.OptionCatalog
	query   string
}

// NewPicker 创建搜索器
func NewPicker(catalog domain.OptionCatalog) *Picker {
	return &Picker{catalog: catalog.Clone()}
}

// SetQuery 设置查询字符串
func (p *Picker) SetQuery(q string) {
	p.query = q
}

// Query 返回当前查询字符串
func (p *Picker) Query() string {
	return p.query
}

// Reset 清空查询
func (p *Picker) Reset() {
	p.query = ""
}

// Results 返回当前查询下的选项
func (p *Picker) Results() domain.OptionCatalog {
	return Options(p.catalog, p.query)
}
