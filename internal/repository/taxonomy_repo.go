package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
)

// ==================== 分类 / 标签仓库 ====================

// CategoryRepository 分类仓库接口
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	Update(ctx context.Context, c *model.Category) error
	SetParent(ctx context.Context, id int64, parentID *int64) error
	ListAll(ctx context.Context) ([]model.Category, error)
}

type categoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) Update(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoryRepo) SetParent(ctx context.Context, id int64, parentID *int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Category{}).
		Where("id = ?", id).
		Update("parent_id", parentID).Error
}

func (r *categoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// ==================== TagRepository ====================

// TagRepository 标签仓库接口
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) error
	GetByID(ctx context.Context, id int64) (*model.Tag, error)
	Update(ctx context.Context, t *model.Tag) error
}

type tagRepo struct {
	db *gorm.DB
}

// NewTagRepository 创建标签仓库
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepo{db: db}
}

func (r *tagRepo) Create(ctx context.Context, t *model.Tag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tagRepo) GetByID(ctx context.Context, id int64) (*model.Tag, error) {
	var t model.Tag
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *tagRepo) Update(ctx context.Context, t *model.Tag) error {
	return r.db.WithContext(ctx).Save(t).Error
}
