package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"woo_import_v1_202601/internal/model"
)

// ==================== ProductRepository 商品仓库 ====================

// ProductRepository 商品仓库接口
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	// GetByIDUnscoped 管理读取逃生通道：软删行也能看到
	GetByIDUnscoped(ctx context.Context, id int64) (*model.Product, error)

	// 分类/标签关联整组置换
	ReplaceCategoryLinks(ctx context.Context, productID int64, categoryIDs []int64) error
	ReplaceTagLinks(ctx context.Context, productID int64, tagIDs []int64) error

	// 变体组整组删除（变体 + 属性值行 + 报价变体行，一个事务）
	DeleteVariantSet(ctx context.Context, productID int64) error
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error)
	ListVariantValues(ctx context.Context, variantID int64) ([]model.ProductVariantAttributeValue, error)

	// 媒体与 SEO
	ReplaceMediaAssets(ctx context.Context, productID int64, assets []model.MediaAsset) error
	UpsertSeoMeta(ctx context.Context, meta *model.ProductSeoMeta) error

	CountAll(ctx context.Context) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) GetByIDUnscoped(ctx context.Context, id int64) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Unscoped().First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) ReplaceCategoryLinks(ctx context.Context, productID int64, categoryIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductCategory{}).Error; err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return nil
		}
		links := make([]model.ProductCategory, 0, len(categoryIDs))
		for _, cid := range categoryIDs {
			links = append(links, model.ProductCategory{ProductID: productID, CategoryID: cid})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

func (r *productRepo) ReplaceTagLinks(ctx context.Context, productID int64, tagIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductTag{}).Error; err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		links := make([]model.ProductTag, 0, len(tagIDs))
		for _, tid := range tagIDs {
			links = append(links, model.ProductTag{ProductID: productID, TagID: tid})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}

// DeleteVariantSet 删除商品当前的整组变体数据
// 整组置换语义的前半段：变体、属性值行、报价变体行一次清掉
// 用硬删，变体行历史由身份映射保证可追溯
func (r *productRepo) DeleteVariantSet(ctx context.Context, productID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var variantIDs []int64
		if err := tx.Model(&model.ProductVariant{}).
			Where("product_id = ?", productID).
			Pluck("id", &variantIDs).Error; err != nil {
			return err
		}
		if len(variantIDs) == 0 {
			return nil
		}
		if err := tx.Unscoped().
			Where("variant_id IN ?", variantIDs).
			Delete(&model.ProductVariantAttributeValue{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("variant_id IN ?", variantIDs).
			Delete(&model.VendorOfferVariant{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().
			Where("product_id = ?", productID).
			Delete(&model.ProductVariant{}).Error
	})
}

func (r *productRepo) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productRepo) ListVariants(ctx context.Context, productID int64) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position, id").
		Find(&out).Error
	return out, err
}

func (r *productRepo) ListVariantValues(ctx context.Context, variantID int64) ([]model.ProductVariantAttributeValue, error) {
	var out []model.ProductVariantAttributeValue
	err := r.db.WithContext(ctx).
		Where("variant_id = ?", variantID).
		Find(&out).Error
	return out, err
}

func (r *productRepo) ReplaceMediaAssets(ctx context.Context, productID int64, assets []model.MediaAsset) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("product_id = ?", productID).
			Delete(&model.MediaAsset{}).Error; err != nil {
			return err
		}
		if len(assets) == 0 {
			return nil
		}
		return tx.Create(&assets).Error
	})
}

func (r *productRepo) UpsertSeoMeta(ctx context.Context, meta *model.ProductSeoMeta) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"meta_title", "meta_description", "structured_data", "updated_at",
		}),
	}).Create(meta).Error
}

func (r *productRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&n).Error
	return n, err
}
