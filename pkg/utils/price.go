package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ==================== 价格解析 ====================

// 来源平台的价格字段是松散文本：可能带千分位、可能用逗号当小数点、
// 甚至混在描述文字里（如 "256 گیگ"）。这里只负责"尽力提取第一个数字"，
// 提取不到就返回"无价格"，绝不返回 0。

// ExtractNumeric 从自由文本里提取第一个数字 token
// 返回 ok=false 表示无法解析（调用方必须按"无价格/面议"处理）
func ExtractNumeric(raw string) (decimal.Decimal, bool) {
	s := normalizeDigits(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero, false
	}

	// 找第一个数字 token：连续的 [0-9.,]
	start := -1
	end := len(s)
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		if start < 0 {
			if isDigit {
				start = i
			}
			continue
		}
		if !isDigit && r != '.' && r != ',' {
			end = i
			break
		}
	}
	if start < 0 {
		return decimal.Zero, false
	}
	token := strings.Trim(s[start:end], ".,")

	hasComma := strings.Contains(token, ",")
	hasDot := strings.Contains(token, ".")

	switch {
	case hasComma && hasDot:
		// 先出现的分隔符是千分位，后出现的是小数点
		if strings.Index(token, ",") < strings.Index(token, ".") {
			token = strings.ReplaceAll(token, ",", "")
		} else {
			token = strings.ReplaceAll(token, ".", "")
			token = strings.ReplaceAll(token, ",", ".")
		}
	case hasComma:
		// "1,5" 是小数，"1,200" 或 "1,200,300" 是千分位
		parts := strings.Split(token, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			token = parts[0] + "." + parts[1]
		} else {
			token = strings.ReplaceAll(token, ",", "")
		}
	}

	d, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// normalizeDigits 把波斯/阿拉伯数字折算成 ASCII 数字
func normalizeDigits(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '٠' && r <= '٩': // Arabic-Indic
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹': // Extended (Persian)
			b.WriteRune('0' + (r - '۰'))
		case r == '٫' || r == '٬': // 阿拉伯小数点/千分位
			b.WriteRune(',')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolvePrice 价格取值策略（简单商品报价和变体报价共用）
// 优先级：折扣价（存在且低于原价）> 原价 > 兜底价格字段
// 全部解析失败 → Valid=false，调用方按"面议"处理
func ResolvePrice(salePrice, regularPrice, fallback string) decimal.NullDecimal {
	sale, saleOK := ExtractNumeric(salePrice)
	regular, regOK := ExtractNumeric(regularPrice)

	if saleOK && regOK && sale.LessThan(regular) {
		return decimal.NullDecimal{Decimal: sale, Valid: true}
	}
	if regOK {
		return decimal.NullDecimal{Decimal: regular, Valid: true}
	}
	if saleOK {
		return decimal.NullDecimal{Decimal: sale, Valid: true}
	}
	if fb, ok := ExtractNumeric(fallback); ok {
		return decimal.NullDecimal{Decimal: fb, Valid: true}
	}
	return decimal.NullDecimal{}
}

// ==================== 库存状态映射 ====================

const (
	StockInStock     = "in_stock"
	StockOutOfStock  = "out_of_stock"
	StockOnBackorder = "on_backorder"
)

// MapStockStatus 来源库存状态 → 内部枚举
// 未识别或为空时默认有货
func MapStockStatus(src string) string {
	switch strings.ToLower(strings.TrimSpace(src)) {
	case "outofstock", "out_of_stock", "soldout":
		return StockOutOfStock
	case "onbackorder", "on_backorder", "backorder":
		return StockOnBackorder
	default:
		return StockInStock
	}
}
