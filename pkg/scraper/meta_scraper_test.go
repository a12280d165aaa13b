package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHeadMeta(t *testing.T) {
	page := `<!DOCTYPE html>
<html><head>
<title>گوشی موبایل سامسونگ | فروشگاه</title>
<meta name="description" content="خرید گوشی موبایل با بهترین قیمت">
<meta property="og:description" content="should not win">
<script type="application/ld+json">{"@type":"Product","name":"Galaxy"}</script>
<script>var notLD = 1;</script>
</head><body><p>ignored</p></body></html>`

	meta, err := ParseHeadMeta(strings.NewReader(page))
	assert.NoError(t, err)
	assert.Equal(t, "گوشی موبایل سامسونگ | فروشگاه", meta.Title)
	assert.Equal(t, "خرید گوشی موبایل با بهترین قیمت", meta.MetaDescription)
	if assert.Len(t, meta.StructuredData, 1) {
		assert.Contains(t, meta.StructuredData[0], `"@type":"Product"`)
	}
}

func TestParseHeadMeta_MalformedIsBestEffort(t *testing.T) {
	// 残缺页面不能报错，拿到多少算多少
	meta, err := ParseHeadMeta(strings.NewReader(`<head><title>partial`))
	assert.NoError(t, err)
	assert.Equal(t, "partial", meta.Title)

	meta, err = ParseHeadMeta(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.MetaDescription)
}
