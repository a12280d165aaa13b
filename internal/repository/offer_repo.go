package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
)

// ==================== OfferRepository 报价仓库 ====================

// OfferRepository 卖家报价仓库接口
type OfferRepository interface {
	GetByVendorProduct(ctx context.Context, vendorID, productID int64) (*model.VendorOffer, error)
	GetAnyByProduct(ctx context.Context, productID int64) (*model.VendorOffer, error)
	Create(ctx context.Context, o *model.VendorOffer) error
	RepointVendor(ctx context.Context, offerID, vendorID int64) error
	ListOfferVariants(ctx context.Context, offerID int64) ([]model.VendorOfferVariant, error)
}

type offerRepo struct {
	db *gorm.DB
}

// NewOfferRepository 创建报价仓库
func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepo{db: db}
}

func (r *offerRepo) GetByVendorProduct(ctx context.Context, vendorID, productID int64) (*model.VendorOffer, error) {
	var o model.VendorOffer
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND product_id = ?", vendorID, productID).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetAnyByProduct 商品现有的报价（卖家归属阶段改指卖家时用）
func (r *offerRepo) GetAnyByProduct(ctx context.Context, productID int64) (*model.VendorOffer, error) {
	var o model.VendorOffer
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("id").
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *offerRepo) Create(ctx context.Context, o *model.VendorOffer) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// RepointVendor 把报价改挂到另一个卖家（不触碰乐观令牌，归属不是对账字段）
func (r *offerRepo) RepointVendor(ctx context.Context, offerID, vendorID int64) error {
	return r.db.WithContext(ctx).
		Model(&model.VendorOffer{}).
		Where("id = ?", offerID).
		Update("vendor_id", vendorID).Error
}

func (r *offerRepo) ListOfferVariants(ctx context.Context, offerID int64) ([]model.VendorOfferVariant, error) {
	var out []model.VendorOfferVariant
	err := r.db.WithContext(ctx).
		Where("offer_id = ?", offerID).
		Find(&out).Error
	return out, err
}
