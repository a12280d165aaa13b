package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/pkg/utils"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== DTO -> Model 显式映射 ====================

// 每个来源 DTO 一个带类型的映射函数，契约全部写在签名里。
// 旧系统里那种"反射探测属性存在就赋值"的写法在这里被全部钉死成显式字段。

// ToCategoryModel 新建分类（父子关系在第二遍统一挂）
func ToCategoryModel(dto woo.CategoryDTO) *model.Category {
	return &model.Category{
		Name:        strings.TrimSpace(dto.Name),
		Slug:        dto.Slug,
		Description: dto.Description,
	}
}

// ApplyCategoryDTO 覆盖对账字段（来源为准）
func ApplyCategoryDTO(c *model.Category, dto woo.CategoryDTO) {
	c.Name = strings.TrimSpace(dto.Name)
	c.Slug = dto.Slug
	c.Description = dto.Description
}

// ToTagModel 新建标签
func ToTagModel(dto woo.TagDTO) *model.Tag {
	return &model.Tag{
		Name:        strings.TrimSpace(dto.Name),
		Slug:        dto.Slug,
		Description: dto.Description,
	}
}

// ApplyTagDTO 覆盖对账字段
func ApplyTagDTO(t *model.Tag, dto woo.TagDTO) {
	t.Name = strings.TrimSpace(dto.Name)
	t.Slug = dto.Slug
	t.Description = dto.Description
}

// ToProductModel 新建商品
func ToProductModel(dto woo.ProductDTO) *model.Product {
	p := &model.Product{
		Name:             strings.TrimSpace(dto.Name),
		Slug:             dto.Slug,
		SKU:              dto.SKU,
		Status:           dto.Status,
		Description:      dto.Description,
		ShortDescription: dto.ShortDescription,
		Kind:             model.ProductKindSimple,
		Permalink:        dto.Permalink,
		RawTags:          tagNames(dto.Tags),
	}
	if dto.Type == "variable" || len(dto.Variations) > 0 {
		p.Kind = model.ProductKindVariable
	}
	return p
}

// ApplyProductDTO 覆盖对账字段
// Kind 只升不降：已是 variable 的商品即使来源这次报 simple 也不回退
func ApplyProductDTO(p *model.Product, dto woo.ProductDTO) {
	p.Name = strings.TrimSpace(dto.Name)
	p.Slug = dto.Slug
	p.SKU = dto.SKU
	p.Status = dto.Status
	p.Description = dto.Description
	p.ShortDescription = dto.ShortDescription
	p.Permalink = dto.Permalink
	p.RawTags = tagNames(dto.Tags)
	if dto.Type == "variable" || len(dto.Variations) > 0 {
		p.Kind = model.ProductKindVariable
	}
}

func tagNames(refs []woo.RefDTO) pq.StringArray {
	if len(refs) == 0 {
		return nil
	}
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Name)
	}
	return pq.StringArray(names)
}

// ToMediaAssets 商品图片列表
func ToMediaAssets(productID int64, images []woo.ImageDTO) []model.MediaAsset {
	assets := make([]model.MediaAsset, 0, len(images))
	for _, img := range images {
		if img.Src == "" {
			continue
		}
		assets = append(assets, model.MediaAsset{
			ProductID:  productID,
			ExternalID: img.ID,
			URL:        img.Src,
			AltText:    img.Alt,
			Position:   img.Position,
		})
	}
	return assets
}

// ToVendorModel 新建卖家
func ToVendorModel(dto woo.StoreDTO) *model.Vendor {
	return &model.Vendor{
		Name:              strings.TrimSpace(dto.StoreName),
		Slug:              utils.Slugify(dto.StoreName),
		StoreURL:          dto.ShopURL,
		Enabled:           dto.Enabled,
		CommissionPercent: ParseCommissionPercent(dto.Commission),
	}
}

// ApplyVendorDTO 覆盖对账字段
func ApplyVendorDTO(v *model.Vendor, dto woo.StoreDTO) {
	v.Name = strings.TrimSpace(dto.StoreName)
	v.StoreURL = dto.ShopURL
	v.Enabled = dto.Enabled
	if pct := ParseCommissionPercent(dto.Commission); pct != nil {
		v.CommissionPercent = pct
	}
}

// ParseCommissionPercent 只认百分比型佣金，固定额/绝对值不产出数值
func ParseCommissionPercent(c *woo.CommissionDTO) *float64 {
	if c == nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Type)) {
	case "percentage", "percent":
	default:
		return nil
	}
	d, ok := utils.ExtractNumeric(c.Value)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// ToVariantModel 新建变体行
func ToVariantModel(productID int64, position int, dto woo.VariationDTO) *model.ProductVariant {
	var raw datatypes.JSON
	if len(dto.Attributes) > 0 {
		pairs := make(map[string]string, len(dto.Attributes))
		for _, a := range dto.Attributes {
			pairs[a.Name] = a.Option
		}
		raw, _ = marshalJSON(pairs)
	}
	return &model.ProductVariant{
		ProductID: productID,
		SKU:       dto.SKU,
		Position:  position,
		RawProps:  raw,
	}
}

// ToOfferVariantModel 变体级报价行
func ToOfferVariantModel(offerID, variantID int64, dto woo.VariationDTO) *model.VendorOfferVariant {
	return &model.VendorOfferVariant{
		OfferID:     offerID,
		VariantID:   variantID,
		Price:       utils.ResolvePrice(dto.SalePrice, dto.RegularPrice, dto.Price),
		StockStatus: utils.MapStockStatus(dto.StockStatus),
		StockQty:    dto.StockQuantity,
		Weight:      parseMeasure(dto.Weight),
		Length:      parseMeasure(dto.Dimensions.Length),
		Width:       parseMeasure(dto.Dimensions.Width),
		Height:      parseMeasure(dto.Dimensions.Height),
	}
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	return datatypes.JSON(b), err
}

func parseMeasure(raw string) *float64 {
	d, ok := utils.ExtractNumeric(raw)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// ToBlogPostModel 新建博客文章
func ToBlogPostModel(dto woo.PostDTO, authorUserID int64) *model.BlogPost {
	p := &model.BlogPost{
		Title:        strings.TrimSpace(dto.Title.Rendered),
		Slug:         dto.Slug,
		Content:      dto.Content.Rendered,
		Excerpt:      dto.Excerpt.Rendered,
		Status:       dto.Status,
		AuthorUserID: authorUserID,
		SourceLink:   dto.Link,
	}
	if t := parseWPTime(dto.DateGmt); t != nil {
		p.PublishedAt = t
	}
	return p
}

// ApplyBlogPostDTO 覆盖对账字段
func ApplyBlogPostDTO(p *model.BlogPost, dto woo.PostDTO, authorUserID int64) {
	p.Title = strings.TrimSpace(dto.Title.Rendered)
	p.Slug = dto.Slug
	p.Content = dto.Content.Rendered
	p.Excerpt = dto.Excerpt.Rendered
	p.Status = dto.Status
	p.SourceLink = dto.Link
	if authorUserID > 0 {
		p.AuthorUserID = authorUserID
	}
	if t := parseWPTime(dto.DateGmt); t != nil {
		p.PublishedAt = t
	}
}

// parseWPTime WordPress 的 "2006-01-02T15:04:05" (GMT，无时区后缀)
func parseWPTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", raw)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
