package model

import "gorm.io/datatypes"

// ==================== 分类 / 标签 / 媒体 ====================

// Category 商品分类
// 父子关系只存 ParentID，不存反向指针；写入时拒绝会成环的父节点
type Category struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	ParentID    *int64 `gorm:"index" json:"parent_id"`
}

func (Category) TableName() string { return "catalog_categories" }

// Tag 商品标签
type Tag struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:255;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (Tag) TableName() string { return "catalog_tags" }

// MediaAsset 商品媒体资源
// URL 是来源地址，MirrorURL 是镜像到对象存储后的地址（best-effort）
type MediaAsset struct {
	BaseModel
	ProductID   int64  `gorm:"index;not null" json:"product_id"`
	ExternalID  int64  `gorm:"index" json:"external_id"`
	URL         string `gorm:"size:1024" json:"url"`
	MirrorURL   string `gorm:"size:1024" json:"mirror_url"`
	AltText     string `gorm:"size:512" json:"alt_text"`
	Position    int    `gorm:"default:0" json:"position"`
	ContentType string `gorm:"size:100" json:"content_type"`
}

func (MediaAsset) TableName() string { return "media_assets" }

// ProductSeoMeta 从渲染页面抓取的 SEO 元数据
type ProductSeoMeta struct {
	BaseModel
	ProductID       int64          `gorm:"uniqueIndex;not null" json:"product_id"`
	MetaTitle       string         `gorm:"size:512" json:"meta_title"`
	MetaDescription string         `gorm:"type:text" json:"meta_description"`
	StructuredData  datatypes.JSON `gorm:"type:jsonb" json:"structured_data"`
}

func (ProductSeoMeta) TableName() string { return "product_seo_metas" }
