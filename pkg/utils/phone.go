package utils

import "strings"

// CanonicalPhone 把各种手机号写法折算成统一的本地数字串
// 输入可能是 "+98 912 345 6789"、"0098-912-3456789"、"09123456789"、
// "۰۹۱۲۳۴۵۶۷۸۹" 等，输出统一为 "09123456789" 形式
// 解析不出数字时返回空串
func CanonicalPhone(raw string) string {
	digits := onlyDigits(normalizeDigits(raw))
	if digits == "" {
		return ""
	}

	// 国际前缀折叠："00<cc>" 和 "<cc>" 归一成本地 0 前缀
	switch {
	case strings.HasPrefix(digits, "0098"):
		digits = digits[4:]
	case strings.HasPrefix(digits, "98") && len(digits) == 12:
		digits = digits[2:]
	}

	// 去掉残留的本地 0 前缀再统一补回，避免 "0912..." 和 "912..." 分裂
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return ""
	}
	return "0" + digits
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
