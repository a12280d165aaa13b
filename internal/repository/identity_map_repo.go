package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
)

// ==================== IdentityMapRepository 身份映射仓库 ====================

// IdentityMapRepository 身份映射仓库接口
// 映射表是追加型的：正常运行永不删除既有键
type IdentityMapRepository interface {
	Find(ctx context.Context, provider, entityType, externalID string) (*model.ExternalIdentityMap, error)
	Insert(ctx context.Context, m *model.ExternalIdentityMap) error
	Touch(ctx context.Context, id int64, at time.Time) error
	ListByEntityType(ctx context.Context, provider, entityType string, page, pageSize int) ([]model.ExternalIdentityMap, int64, error)
}

type identityMapRepo struct {
	db *gorm.DB
}

// NewIdentityMapRepository 创建身份映射仓库
func NewIdentityMapRepository(db *gorm.DB) IdentityMapRepository {
	return &identityMapRepo{db: db}
}

// Find 查映射，没有返回 nil, nil
func (r *identityMapRepo) Find(ctx context.Context, provider, entityType, externalID string) (*model.ExternalIdentityMap, error) {
	var m model.ExternalIdentityMap
	err := r.db.WithContext(ctx).
		Where("provider = ? AND entity_type = ? AND external_id = ?", provider, entityType, externalID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Insert 插入新映射；键冲突时把底层唯一约束错误原样抛给调用方判定
func (r *identityMapRepo) Insert(ctx context.Context, m *model.ExternalIdentityMap) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// Touch 刷新 last_synced_at
func (r *identityMapRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.ExternalIdentityMap{}).
		Where("id = ?", id).
		UpdateColumn("last_synced_at", at).Error
}

// ListByEntityType 管理接口用的分页查询
func (r *identityMapRepo) ListByEntityType(ctx context.Context, provider, entityType string, page, pageSize int) ([]model.ExternalIdentityMap, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.ExternalIdentityMap{})
	if provider != "" {
		query = query.Where("provider = ?", provider)
	}
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	var items []model.ExternalIdentityMap
	err := query.Order("id").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
