package model

import "time"

// ==================== 外部身份映射 ====================

// 身份映射是跨运行的持久契约：(provider, entity_type, external_id) 全局唯一，
// internal_id 一旦分配不再变化。所有阶段新建实体必须经过它，
// 重复导入才能永远落在同一行上。

// 实体类型判别串
// 属性不在列：attributes.external_key 自带外部键唯一索引，不经映射表去重
const (
	EntityCategory     = "category"
	EntityTag          = "tag"
	EntityProduct      = "product"
	EntityVariant      = "product_variant"
	EntityVendor       = "vendor"
	EntityBlogPost     = "blog_post"
	EntityBlogCategory = "blog_category"
	EntityBlogTag      = "blog_tag"
)

// ExternalIdentityMap 外部 → 内部身份映射行
type ExternalIdentityMap struct {
	ID           int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	Provider     string    `gorm:"size:50;not null;uniqueIndex:uq_provider_entity_ext,priority:1" json:"provider"`
	EntityType   string    `gorm:"size:50;not null;uniqueIndex:uq_provider_entity_ext,priority:2" json:"entity_type"`
	ExternalID   string    `gorm:"size:100;not null;uniqueIndex:uq_provider_entity_ext,priority:3" json:"external_id"`
	InternalID   int64     `gorm:"not null;index" json:"internal_id"`
	ExternalSlug string    `gorm:"size:255" json:"external_slug"`
	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ExternalIdentityMap) TableName() string {
	return "external_identity_maps"
}
