package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// slug 最大长度（按 rune 计）
const maxSlugLen = 60

var lowerCaser = cases.Lower(language.Und)

// Slugify 把任意来源字符串转成稳定的 slug
// 规则：
//  1. 去首尾空白，小写化（locale-aware，波斯语/阿拉伯语字符保留）
//  2. 空白串折叠为单个连字符
//  3. 去掉 [a-z0-9-] 和非拉丁字母以外的字符
//  4. 连字符折叠、去首尾连字符、截断到 60 字符
//  5. 结果为空时回退为 "attr"
func Slugify(raw string) string {
	s := lowerCaser.String(strings.TrimSpace(raw))

	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r > unicode.MaxASCII && unicode.IsLetter(r):
			// 本地文字（波斯语等）原样保留
			b.WriteRune(r)
			lastHyphen = false
		default:
			// 其余符号直接丢弃
		}
	}

	out := strings.Trim(b.String(), "-")

	// 按 rune 截断，避免把多字节字符切坏
	runes := []rune(out)
	if len(runes) > maxSlugLen {
		out = strings.Trim(string(runes[:maxSlugLen]), "-")
	}

	if out == "" {
		return "attr"
	}
	return out
}
