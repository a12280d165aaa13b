package model

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ==================== 商品 ====================

// 商品的两种形态
const (
	ProductKindSimple   = "simple"
	ProductKindVariable = "variable"
)

// Product 内部商品
type Product struct {
	BaseModel
	Name             string `gorm:"size:512;not null" json:"name"`
	Slug             string `gorm:"size:255;uniqueIndex" json:"slug"`
	SKU              string `gorm:"size:100;index" json:"sku"`
	Status           string `gorm:"size:20;index" json:"status"`
	Description      string `gorm:"type:text" json:"description"`
	ShortDescription string `gorm:"type:text" json:"short_description"`

	// Kind 一经置为 variable 不再自动回退 simple，
	// 来源偶发回报零变体时不做破坏性降级
	Kind string `gorm:"size:20;default:simple;index" json:"kind"`

	VendorID int64 `gorm:"index;default:0" json:"vendor_id"`

	// 来源侧的原始标签名单，调试/排查用；关系走 ProductTag
	RawTags pq.StringArray `gorm:"type:text[]" json:"raw_tags"`

	Permalink  string `gorm:"size:1024" json:"permalink"`
	RowVersion int64  `gorm:"default:0" json:"row_version"`
}

func (Product) TableName() string { return "products" }

func (p *Product) PrimaryKey() int64 { return p.ID }
func (Product) EntityName() string { return "products" }
func (p *Product) VersionToken() int64 { return p.RowVersion }
func (p *Product) SetVersionToken(v int64) { p.RowVersion = v }

// ProductCategory 商品-分类关联
type ProductCategory struct {
	ID         int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ProductID  int64 `gorm:"not null;uniqueIndex:uq_product_category,priority:1" json:"product_id"`
	CategoryID int64 `gorm:"not null;uniqueIndex:uq_product_category,priority:2" json:"category_id"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// ProductTag 商品-标签关联
type ProductTag struct {
	ID        int64 `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	ProductID int64 `gorm:"not null;uniqueIndex:uq_product_tag,priority:1" json:"product_id"`
	TagID     int64 `gorm:"not null;uniqueIndex:uq_product_tag,priority:2" json:"tag_id"`
}

func (ProductTag) TableName() string { return "product_tags" }

// ProductVariant 商品变体
// 变体集是"整组置换"语义：每次对账先删光旧组再按来源重建，
// 只有变体行自身的内部 ID 经身份映射保持稳定
type ProductVariant struct {
	BaseModel
	ProductID  int64          `gorm:"index;not null" json:"product_id"`
	SKU        string         `gorm:"size:100;index" json:"sku"`
	Position   int            `gorm:"default:0" json:"position"`
	RawProps   datatypes.JSON `gorm:"type:jsonb" json:"raw_props"` // 来源原始属性对，排查用
	RowVersion int64          `gorm:"default:0" json:"row_version"`
}

func (ProductVariant) TableName() string { return "product_variants" }

func (v *ProductVariant) PrimaryKey() int64 { return v.ID }
func (ProductVariant) EntityName() string { return "product_variants" }
func (v *ProductVariant) VersionToken() int64 { return v.RowVersion }
func (v *ProductVariant) SetVersionToken(t int64) { v.RowVersion = t }

// ProductVariantAttributeValue 变体的属性取值行
type ProductVariantAttributeValue struct {
	BaseModel
	VariantID   int64 `gorm:"index;not null" json:"variant_id"`
	AttributeID int64 `gorm:"index;not null" json:"attribute_id"`
	OptionID    int64 `gorm:"index;not null" json:"option_id"`
	RowVersion  int64 `gorm:"default:0" json:"row_version"`
}

func (ProductVariantAttributeValue) TableName() string { return "product_variant_attribute_values" }

func (v *ProductVariantAttributeValue) PrimaryKey() int64 { return v.ID }
func (ProductVariantAttributeValue) EntityName() string { return "product_variant_attribute_values" }
func (v *ProductVariantAttributeValue) VersionToken() int64 { return v.RowVersion }
func (v *ProductVariantAttributeValue) SetVersionToken(t int64) { v.RowVersion = t }
