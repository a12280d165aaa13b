package model

import "github.com/shopspring/decimal"

// ==================== 卖家 / 报价 ====================

// 会员角色
const (
	MemberRoleOwner = "owner"
)

// DefaultVendorSlug 平台自营卖家的固定 slug
// 变体/报价对账需要一个兜底卖家时按它查找，首次懒创建
const DefaultVendorSlug = "marketplace"

// Vendor 内部卖家，一个外部店铺对应一个
type Vendor struct {
	BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
	Slug string `gorm:"size:255;uniqueIndex" json:"slug"`

	// 只有来源报的是百分比型佣金才有值，固定额佣金不落库
	CommissionPercent *float64 `json:"commission_percent"`

	StoreURL string `gorm:"size:1024" json:"store_url"`
	Enabled  bool   `gorm:"default:true" json:"enabled"`
}

func (Vendor) TableName() string { return "vendors" }

// VendorMember 卖家成员关系
// 一个用户最多一条成员关系（UserID 唯一索引），一个卖家恰好一条 Owner 行：
// 重复解析同一店铺时把既有关系改指，而不是再建一条
type VendorMember struct {
	BaseModel
	VendorID int64  `gorm:"index;not null" json:"vendor_id"`
	UserID   int64  `gorm:"uniqueIndex;not null" json:"user_id"`
	Role     string `gorm:"size:20;default:owner" json:"role"`
}

func (VendorMember) TableName() string { return "vendor_members" }

// VendorOffer 卖家对商品的报价
// (vendor_id, product_id) 唯一
type VendorOffer struct {
	BaseModel
	VendorID  int64 `gorm:"not null;uniqueIndex:uq_vendor_product,priority:1" json:"vendor_id"`
	ProductID int64 `gorm:"not null;uniqueIndex:uq_vendor_product,priority:2" json:"product_id"`

	// Valid=false 表示"无价格/面议"，绝不是 0 元
	Price decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"price"`

	StockStatus string `gorm:"size:20;default:in_stock" json:"stock_status"`
	StockQty    *int   `json:"stock_qty"`
	RowVersion  int64  `gorm:"default:0" json:"row_version"`
}

func (VendorOffer) TableName() string { return "vendor_offers" }

func (o *VendorOffer) PrimaryKey() int64 { return o.ID }
func (VendorOffer) EntityName() string { return "vendor_offers" }
func (o *VendorOffer) VersionToken() int64 { return o.RowVersion }
func (o *VendorOffer) SetVersionToken(v int64) { o.RowVersion = v }

// VendorOfferVariant 变体级报价行，随变体组整组置换
type VendorOfferVariant struct {
	BaseModel
	OfferID   int64 `gorm:"index;not null" json:"offer_id"`
	VariantID int64 `gorm:"index;not null" json:"variant_id"`

	Price decimal.NullDecimal `gorm:"type:numeric(18,4)" json:"price"`

	StockStatus string   `gorm:"size:20;default:in_stock" json:"stock_status"`
	StockQty    *int     `json:"stock_qty"`
	Weight      *float64 `json:"weight"`
	Length      *float64 `json:"length"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	RowVersion  int64    `gorm:"default:0" json:"row_version"`
}

func (VendorOfferVariant) TableName() string { return "vendor_offer_variants" }

func (v *VendorOfferVariant) PrimaryKey() int64 { return v.ID }
func (VendorOfferVariant) EntityName() string { return "vendor_offer_variants" }
func (v *VendorOfferVariant) VersionToken() int64 { return v.RowVersion }
func (v *VendorOfferVariant) SetVersionToken(t int64) { v.RowVersion = t }
