package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"woo_import_v1_202601/internal/model"
)

// ==================== BlogRepository 博客仓库 ====================

// BlogRepository 博客仓库接口
type BlogRepository interface {
	CreatePost(ctx context.Context, p *model.BlogPost) error
	GetPostByID(ctx context.Context, id int64) (*model.BlogPost, error)
	UpdatePost(ctx context.Context, p *model.BlogPost) error
	ReplacePostTerms(ctx context.Context, postID int64, categoryIDs, tagIDs []int64) error

	CreateCategory(ctx context.Context, c *model.BlogCategory) error
	GetCategoryByID(ctx context.Context, id int64) (*model.BlogCategory, error)
	UpdateCategory(ctx context.Context, c *model.BlogCategory) error

	CreateTag(ctx context.Context, t *model.BlogTag) error
	GetTagByID(ctx context.Context, id int64) (*model.BlogTag, error)
	UpdateTag(ctx context.Context, t *model.BlogTag) error
}

type blogRepo struct {
	db *gorm.DB
}

// NewBlogRepository 创建博客仓库
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepo{db: db}
}

func (r *blogRepo) CreatePost(ctx context.Context, p *model.BlogPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *blogRepo) GetPostByID(ctx context.Context, id int64) (*model.BlogPost, error) {
	var p model.BlogPost
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *blogRepo) UpdatePost(ctx context.Context, p *model.BlogPost) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *blogRepo) ReplacePostTerms(ctx context.Context, postID int64, categoryIDs, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", postID).Delete(&model.BlogPostCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&model.BlogPostTag{}).Error; err != nil {
			return err
		}
		for _, cid := range categoryIDs {
			link := model.BlogPostCategory{PostID: postID, CategoryID: cid}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		for _, tid := range tagIDs {
			link := model.BlogPostTag{PostID: postID, TagID: tid}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *blogRepo) CreateCategory(ctx context.Context, c *model.BlogCategory) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *blogRepo) GetCategoryByID(ctx context.Context, id int64) (*model.BlogCategory, error) {
	var c model.BlogCategory
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *blogRepo) UpdateCategory(ctx context.Context, c *model.BlogCategory) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *blogRepo) CreateTag(ctx context.Context, t *model.BlogTag) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *blogRepo) GetTagByID(ctx context.Context, id int64) (*model.BlogTag, error) {
	var t model.BlogTag
	err := r.db.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *blogRepo) UpdateTag(ctx context.Context, t *model.BlogTag) error {
	return r.db.WithContext(ctx).Save(t).Error
}
