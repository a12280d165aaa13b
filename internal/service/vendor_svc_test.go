package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== 测试辅助 ====================

func setupVendorTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.ExternalIdentityMap{},
		&model.User{}, &model.Vendor{}, &model.VendorMember{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func newVendorService(db *gorm.DB) *VendorService {
	identity := NewIdentityService(repository.NewIdentityMapRepository(db), "dokan")
	return NewVendorService(
		repository.NewUserRepository(db),
		repository.NewVendorRepository(db),
		identity,
	)
}

// ==================== 单元测试 ====================

func TestVendorService_MatchByEmail(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	existing := &model.User{Email: "owner@example.com", FirstName: "Ali"}
	db.Create(existing)

	_, userID, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID:        7,
		StoreName: "Acme",
		Email:     "Owner@Example.COM", // 大小写归一化后命中
		Phone:     "0912 345 6789",
	})
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, userID)

	// 只回填空字段：手机号补上，已有名字不动
	var u model.User
	db.First(&u, existing.ID)
	assert.Equal(t, "09123456789", u.Phone)
	assert.Equal(t, "Ali", u.FirstName)
	assert.Equal(t, "owner@example.com", u.Email)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count, "命中既有用户时不得新建")
}

func TestVendorService_MatchByPhone(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	existing := &model.User{Email: "someone@example.com", Phone: "09123456789"}
	db.Create(existing)

	// 店铺没有可用邮箱，手机号规范化后命中
	_, userID, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID:    8,
		Phone: "+98 912 345 6789",
	})
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, userID)

	var u model.User
	db.First(&u, existing.ID)
	assert.Equal(t, "someone@example.com", u.Email, "已有邮箱绝不覆盖")
}

func TestVendorService_SyntheticFallbackDeterministic(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	dto := woo.StoreDTO{ID: 9, StoreName: "NoContact"}

	_, userID1, err := svc.ResolveStore(ctx, nil, dto)
	assert.NoError(t, err)
	_, userID2, err := svc.ResolveStore(ctx, nil, dto)
	assert.NoError(t, err)
	assert.Equal(t, userID1, userID2, "重复运行必须落到同一兜底账号")

	var u model.User
	db.First(&u, userID1)
	assert.Equal(t, "store-9@import.invalid", u.Email)

	var count int64
	db.Model(&model.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVendorService_OwnerMembershipNeverDuplicated(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	// 同一个邮箱先后出现在两个店铺上：成员关系改指，不建第二条
	vendor1, userID, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID: 10, StoreName: "First", Email: "dual@example.com",
	})
	assert.NoError(t, err)

	vendor2, userID2, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID: 11, StoreName: "Second", Email: "dual@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, userID, userID2)
	assert.NotEqual(t, vendor1, vendor2)

	var members []model.VendorMember
	db.Where("user_id = ?", userID).Find(&members)
	assert.Len(t, members, 1, "一个用户恰好一条 Owner 成员关系")
	assert.Equal(t, vendor2, members[0].VendorID, "成员关系改指到最近解析的卖家")
	assert.Equal(t, model.MemberRoleOwner, members[0].Role)
}

func TestVendorService_VendorOwnerNeverDuplicated(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	// 第一轮：店铺没有任何身份信号，Owner 落在合成账号上
	vendorID, synthUserID, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID: 9, StoreName: "NoContact",
	})
	assert.NoError(t, err)

	// 第二轮：店铺补上了真实邮箱，命中另一个既有用户
	real := &model.User{Email: "real@example.com"}
	db.Create(real)
	vendorID2, userID2, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID: 9, StoreName: "NoContact", Email: "real@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, vendorID, vendorID2)
	assert.Equal(t, real.ID, userID2)
	assert.NotEqual(t, synthUserID, userID2, "真实邮箱命中后不再用合成账号")

	// 卖家名下的 Owner 行改指到新用户，绝不出现第二条
	var owners []model.VendorMember
	db.Where("vendor_id = ? AND role = ?", vendorID, model.MemberRoleOwner).Find(&owners)
	if assert.Len(t, owners, 1, "一个卖家恰好一条 Owner 成员关系") {
		assert.Equal(t, real.ID, owners[0].UserID)
	}

	n, err := repository.NewVendorRepository(db).CountOwners(ctx, vendorID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestVendorService_MatchPriority(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	// 三个候选账号同时在库：邮箱命中、手机号命中、合成账号
	emailUser := &model.User{Email: "owner@example.com"}
	phoneUser := &model.User{Email: "p@example.com", Phone: "09123456789"}
	synthUser := &model.User{Email: SyntheticEmail(42)}
	db.Create(emailUser)
	db.Create(phoneUser)
	db.Create(synthUser)

	// 邮箱和手机号都给出时邮箱优先
	_, userID, err := svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID:    42,
		Email: "Owner@Example.COM",
		Phone: "+98 912 345 6789",
	})
	assert.NoError(t, err)
	assert.Equal(t, emailUser.ID, userID)

	// 没有邮箱时手机号压过合成账号
	db.Create(&model.User{Email: SyntheticEmail(43)})
	_, userID, err = svc.ResolveStore(ctx, nil, woo.StoreDTO{
		ID:    43,
		Phone: "0098 912 345 6789",
	})
	assert.NoError(t, err)
	assert.Equal(t, phoneUser.ID, userID)
}

func TestVendorService_VendorUpsertIsStable(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	dto := woo.StoreDTO{ID: 12, StoreName: "Shop", Email: "s@example.com", Enabled: true}

	vendorID1, _, err := svc.ResolveStore(ctx, nil, dto)
	assert.NoError(t, err)

	dto.StoreName = "Shop Renamed"
	vendorID2, _, err := svc.ResolveStore(ctx, nil, dto)
	assert.NoError(t, err)
	assert.Equal(t, vendorID1, vendorID2, "同一外部店铺永远解析到同一内部卖家")

	var v model.Vendor
	db.First(&v, vendorID1)
	assert.Equal(t, "Shop Renamed", v.Name, "重复解析以来源为准刷新字段")

	var count int64
	db.Model(&model.Vendor{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVendorService_MalformedStore(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)

	_, _, err := svc.ResolveStore(context.Background(), nil, woo.StoreDTO{ID: 0})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestVendorService_EnsureDefaultVendor(t *testing.T) {
	db := setupVendorTestDB(t)
	svc := newVendorService(db)
	ctx := context.Background()

	id1, err := svc.EnsureDefaultVendor(ctx)
	assert.NoError(t, err)
	id2, err := svc.EnsureDefaultVendor(ctx)
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)

	var v model.Vendor
	db.First(&v, id1)
	assert.Equal(t, model.DefaultVendorSlug, v.Slug)
}
