package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"woo_import_v1_202601/internal/model"
)

// ==================== 属性注册表仓库 ====================

// AttributeRepository 属性注册表仓库接口
type AttributeRepository interface {
	// 分组
	GetGroupByName(ctx context.Context, name string) (*model.AttributeGroup, error)
	CreateGroup(ctx context.Context, g *model.AttributeGroup) error

	// 属性
	GetByExternalKey(ctx context.Context, key string) (*model.Attribute, error)
	CreateAttribute(ctx context.Context, a *model.Attribute) error
	UpdateValueType(ctx context.Context, id int64, valueType string) error

	// 取值
	GetOption(ctx context.Context, attributeID int64, value string) (*model.AttributeOption, error)
	CreateOption(ctx context.Context, o *model.AttributeOption) error
}

type attributeRepo struct {
	db *gorm.DB
}

// NewAttributeRepository 创建属性仓库
func NewAttributeRepository(db *gorm.DB) AttributeRepository {
	return &attributeRepo{db: db}
}

func (r *attributeRepo) GetGroupByName(ctx context.Context, name string) (*model.AttributeGroup, error) {
	var g model.AttributeGroup
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *attributeRepo) CreateGroup(ctx context.Context, g *model.AttributeGroup) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *attributeRepo) GetByExternalKey(ctx context.Context, key string) (*model.Attribute, error) {
	var a model.Attribute
	err := r.db.WithContext(ctx).Where("external_key = ?", key).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *attributeRepo) CreateAttribute(ctx context.Context, a *model.Attribute) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attributeRepo) UpdateValueType(ctx context.Context, id int64, valueType string) error {
	return r.db.WithContext(ctx).
		Model(&model.Attribute{}).
		Where("id = ?", id).
		Update("value_type", valueType).Error
}

func (r *attributeRepo) GetOption(ctx context.Context, attributeID int64, value string) (*model.AttributeOption, error) {
	var o model.AttributeOption
	err := r.db.WithContext(ctx).
		Where("attribute_id = ? AND value = ?", attributeID, value).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOption 创建取值；并发写同一取值时靠唯一索引兜底，冲突即忽略后重查
func (r *attributeRepo) CreateOption(ctx context.Context, o *model.AttributeOption) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(o).Error
	if err != nil {
		return err
	}
	if o.ID == 0 {
		// 冲突被忽略了，读回赢家
		existing, err := r.GetOption(ctx, o.AttributeID, o.Value)
		if err != nil {
			return err
		}
		if existing != nil {
			*o = *existing
		}
	}
	return nil
}
