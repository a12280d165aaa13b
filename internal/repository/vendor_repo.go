package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
)

// ==================== VendorRepository 卖家仓库 ====================

// VendorRepository 卖家仓库接口
type VendorRepository interface {
	Create(ctx context.Context, v *model.Vendor) error
	GetByID(ctx context.Context, id int64) (*model.Vendor, error)
	GetBySlug(ctx context.Context, slug string) (*model.Vendor, error)
	Update(ctx context.Context, v *model.Vendor) error

	// 成员关系：一个用户最多一条
	GetMemberByUser(ctx context.Context, userID int64) (*model.VendorMember, error)
	GetOwnerByVendor(ctx context.Context, vendorID int64) (*model.VendorMember, error)
	CountOwners(ctx context.Context, vendorID int64) (int64, error)
	CreateMember(ctx context.Context, m *model.VendorMember) error
	UpdateMember(ctx context.Context, m *model.VendorMember) error
	DeleteMember(ctx context.Context, id int64) error
}

type vendorRepo struct {
	db *gorm.DB
}

// NewVendorRepository 创建卖家仓库
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) Create(ctx context.Context, v *model.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *vendorRepo) GetByID(ctx context.Context, id int64) (*model.Vendor, error) {
	var v model.Vendor
	err := r.db.WithContext(ctx).First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendorRepo) GetBySlug(ctx context.Context, slug string) (*model.Vendor, error) {
	var v model.Vendor
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *vendorRepo) Update(ctx context.Context, v *model.Vendor) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r *vendorRepo) GetMemberByUser(ctx context.Context, userID int64) (*model.VendorMember, error) {
	var m model.VendorMember
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *vendorRepo) GetOwnerByVendor(ctx context.Context, vendorID int64) (*model.VendorMember, error) {
	var m model.VendorMember
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND role = ?", vendorID, model.MemberRoleOwner).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *vendorRepo) CountOwners(ctx context.Context, vendorID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.VendorMember{}).
		Where("vendor_id = ? AND role = ?", vendorID, model.MemberRoleOwner).
		Count(&n).Error
	return n, err
}

func (r *vendorRepo) CreateMember(ctx context.Context, m *model.VendorMember) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *vendorRepo) UpdateMember(ctx context.Context, m *model.VendorMember) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// DeleteMember 硬删：user_id 唯一索引下软删行会挡住后续改指
func (r *vendorRepo) DeleteMember(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.VendorMember{}, id).Error
}
