package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeGiftID 将礼物名称规整为礼物 ID：
// 去除首尾空白、转小写、非 [a-z0-9] 字符的连续片段替换为 "-"、去掉首尾的 "-"。
func NormalizeGiftID(value string) string {
	lowered := FoldLabel(strings.TrimSpace(value))

	var b strings.Builder
	b.Grow(len(lowered))
	pendingDash := false
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

// FoldLabel 返回用于大小写无关匹配的小写形式。
// Caser 带状态，不能在 goroutine 之间共享，因此每次调用新建。
func FoldLabel(s string) string {
	return cases.Lower(language.Und).String(s)
}
