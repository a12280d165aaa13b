package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"本地写法", "09123456789", "09123456789"},
		{"加号国际码", "+989123456789", "09123456789"},
		{"双零国际码", "00989123456789", "09123456789"},
		{"带分隔符", "0912-345-6789", "09123456789"},
		{"带空格", "+98 912 345 6789", "09123456789"},
		{"无前导零", "9123456789", "09123456789"},
		{"波斯数字", "۰۹۱۲۳۴۵۶۷۸۹", "09123456789"},
		{"空串", "", ""},
		{"无数字", "n/a", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalPhone(tt.input))
		})
	}
}

func TestCanonicalPhone_AllFormsConverge(t *testing.T) {
	// 同一个号码的所有写法必须折算到同一个规范形式
	forms := []string{
		"09123456789",
		"+989123456789",
		"00989123456789",
		"98 912 345 6789",
		"0912 345 67 89",
	}
	want := CanonicalPhone(forms[0])
	for _, f := range forms {
		assert.Equal(t, want, CanonicalPhone(f), "form %q", f)
	}
}
