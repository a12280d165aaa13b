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

type variantTestEnv struct {
	db          *gorm.DB
	svc         *VariantService
	batch       *BatchController
	productRepo repository.ProductRepository
	offerRepo   repository.OfferRepository
}

func setupVariantTest(t *testing.T) *variantTestEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.ExternalIdentityMap{},
		&model.Product{}, &model.ProductVariant{}, &model.ProductVariantAttributeValue{},
		&model.AttributeGroup{}, &model.Attribute{}, &model.AttributeOption{},
		&model.Vendor{}, &model.VendorOffer{}, &model.VendorOfferVariant{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	productRepo := repository.NewProductRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	attrSvc := NewAttributeService(repository.NewAttributeRepository(db))
	identity := NewIdentityService(repository.NewIdentityMapRepository(db), "dokan")
	batch := NewBatchController(db, 100, nil, nil)

	return &variantTestEnv{
		db:          db,
		svc:         NewVariantService(productRepo, offerRepo, attrSvc, identity, batch),
		batch:       batch,
		productRepo: productRepo,
		offerRepo:   offerRepo,
	}
}

func (e *variantTestEnv) createProduct(t *testing.T, kind string) *model.Product {
	p := &model.Product{Name: "Widget", Slug: "widget", Kind: kind}
	if err := e.db.Create(p).Error; err != nil {
		t.Fatalf("创建测试商品失败: %v", err)
	}
	return p
}

func (e *variantTestEnv) createVendor(t *testing.T) int64 {
	v := &model.Vendor{Name: "Marketplace", Slug: "marketplace", Enabled: true}
	if err := e.db.Create(v).Error; err != nil {
		t.Fatalf("创建测试卖家失败: %v", err)
	}
	return v.ID
}

func intPtr(n int) *int { return &n }

// ==================== 单元测试 ====================

func TestVariantService_SimpleProductOffer(t *testing.T) {
	env := setupVariantTest(t)
	ctx := context.Background()
	vendorID := env.createVendor(t)
	p := env.createProduct(t, model.ProductKindSimple)

	dto := woo.ProductDTO{
		ID:            100,
		SalePrice:     "80",
		RegularPrice:  "100",
		StockStatus:   "instock",
		StockQuantity: intPtr(5),
	}
	assert.NoError(t, env.svc.ReconcileSimple(ctx, nil, p, dto, vendorID))
	assert.NoError(t, env.batch.Flush(ctx))

	offer, err := env.offerRepo.GetByVendorProduct(ctx, vendorID, p.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, offer) {
		assert.True(t, offer.Price.Valid)
		assert.Equal(t, "80", offer.Price.Decimal.String(), "折扣价低于原价时取折扣价")
		assert.Equal(t, "in_stock", offer.StockStatus)
		if assert.NotNil(t, offer.StockQty) {
			assert.Equal(t, 5, *offer.StockQty)
		}
	}

	// 重复对账不产生第二条报价
	assert.NoError(t, env.svc.ReconcileSimple(ctx, nil, p, dto, vendorID))
	assert.NoError(t, env.batch.Flush(ctx))
	var count int64
	env.db.Model(&model.VendorOffer{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestVariantService_NoPriceMeansNoPrice(t *testing.T) {
	env := setupVariantTest(t)
	ctx := context.Background()
	vendorID := env.createVendor(t)
	p := env.createProduct(t, model.ProductKindSimple)

	// 全部价格字段不可解析 → 无价格，绝不是 0
	dto := woo.ProductDTO{ID: 100, Price: "abc", StockStatus: "outofstock"}
	assert.NoError(t, env.svc.ReconcileSimple(ctx, nil, p, dto, vendorID))
	assert.NoError(t, env.batch.Flush(ctx))

	offer, err := env.offerRepo.GetAnyByProduct(ctx, p.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, offer) {
		assert.False(t, offer.Price.Valid)
		assert.Equal(t, "out_of_stock", offer.StockStatus)
	}
}

func TestVariantService_SimpleToVariableOneWay(t *testing.T) {
	env := setupVariantTest(t)
	ctx := context.Background()
	vendorID := env.createVendor(t)
	p := env.createProduct(t, model.ProductKindSimple)

	variations := []woo.VariationDTO{{
		ID:           501,
		RegularPrice: "50",
		Attributes:   []woo.VariationAttrDTO{{ID: 1, Name: "Color", Option: "Red"}},
	}}
	n, err := env.svc.ReconcileVariable(ctx, NewRunCache(), p, woo.ProductDTO{ID: 100, Type: "variable"}, variations, vendorID)
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, env.batch.Flush(ctx))

	got, _ := env.productRepo.GetByID(ctx, p.ID)
	assert.Equal(t, model.ProductKindVariable, got.Kind)

	// 来源这次回报零变体：变体清空，形态保持 variable 不回退
	n, err = env.svc.ReconcileVariable(ctx, NewRunCache(), got, woo.ProductDTO{ID: 100, Type: "variable"}, nil, vendorID)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, env.batch.Flush(ctx))

	got, _ = env.productRepo.GetByID(ctx, p.ID)
	assert.Equal(t, model.ProductKindVariable, got.Kind)
	vs, _ := env.productRepo.ListVariants(ctx, p.ID)
	assert.Len(t, vs, 0)
}

func TestVariantService_FullReplaceVariantSet(t *testing.T) {
	env := setupVariantTest(t)
	ctx := context.Background()
	vendorID := env.createVendor(t)
	p := env.createProduct(t, model.ProductKindVariable)

	run1 := []woo.VariationDTO{
		{ID: 501, SKU: "W-RED", RegularPrice: "50", Attributes: []woo.VariationAttrDTO{{ID: 1, Name: "Color", Option: "Red"}}},
		{ID: 502, SKU: "W-BLUE", RegularPrice: "55", Attributes: []woo.VariationAttrDTO{{ID: 1, Name: "Color", Option: "Blue"}}},
	}
	_, err := env.svc.ReconcileVariable(ctx, NewRunCache(), p, woo.ProductDTO{ID: 100, Type: "variable"}, run1, vendorID)
	assert.NoError(t, err)
	assert.NoError(t, env.batch.Flush(ctx))

	vs, _ := env.productRepo.ListVariants(ctx, p.ID)
	assert.Len(t, vs, 2)
	firstRunRedID := vs[0].ID

	var valueCount, offerVariantCount int64
	env.db.Model(&model.ProductVariantAttributeValue{}).Count(&valueCount)
	env.db.Model(&model.VendorOfferVariant{}).Count(&offerVariantCount)
	assert.Equal(t, int64(2), valueCount)
	assert.Equal(t, int64(2), offerVariantCount)

	// 第二轮只剩一个新变体：旧组整体置换
	got, _ := env.productRepo.GetByID(ctx, p.ID)
	run2 := []woo.VariationDTO{
		{ID: 503, SKU: "W-GREEN", RegularPrice: "60", Attributes: []woo.VariationAttrDTO{{ID: 1, Name: "Color", Option: "Green"}}},
	}
	_, err = env.svc.ReconcileVariable(ctx, NewRunCache(), got, woo.ProductDTO{ID: 100, Type: "variable"}, run2, vendorID)
	assert.NoError(t, err)
	assert.NoError(t, env.batch.Flush(ctx))

	vs, _ = env.productRepo.ListVariants(ctx, p.ID)
	if assert.Len(t, vs, 1) {
		assert.Equal(t, "W-GREEN", vs[0].SKU)
	}
	env.db.Model(&model.ProductVariantAttributeValue{}).Count(&valueCount)
	env.db.Model(&model.VendorOfferVariant{}).Count(&offerVariantCount)
	assert.Equal(t, int64(1), valueCount, "旧变体的取值行必须随组删除")
	assert.Equal(t, int64(1), offerVariantCount, "旧变体的报价行必须随组删除")

	// 第三轮老外部 ID 回归：内部 ID 经身份映射保持稳定
	got, _ = env.productRepo.GetByID(ctx, p.ID)
	_, err = env.svc.ReconcileVariable(ctx, NewRunCache(), got, woo.ProductDTO{ID: 100, Type: "variable"}, run1[:1], vendorID)
	assert.NoError(t, err)
	assert.NoError(t, env.batch.Flush(ctx))

	vs, _ = env.productRepo.ListVariants(ctx, p.ID)
	if assert.Len(t, vs, 1) {
		assert.Equal(t, firstRunRedID, vs[0].ID, "同一外部变体跨运行必须拿到同一内部 ID")
	}
}

func TestVariantService_VariantAttributeNormalization(t *testing.T) {
	env := setupVariantTest(t)
	ctx := context.Background()
	vendorID := env.createVendor(t)
	p := env.createProduct(t, model.ProductKindVariable)

	variations := []woo.VariationDTO{{
		ID:           501,
		RegularPrice: "50",
		Attributes: []woo.VariationAttrDTO{
			{ID: 1, Name: "Color", Option: " Red "},
			{ID: 0, Name: "Custom Finish", Option: "Matte"},
		},
	}}
	_, err := env.svc.ReconcileVariable(ctx, NewRunCache(), p, woo.ProductDTO{ID: 100, Type: "variable"}, variations, vendorID)
	assert.NoError(t, err)
	assert.NoError(t, env.batch.Flush(ctx))

	var global, custom model.Attribute
	assert.NoError(t, env.db.Where("external_key = ?", "attr:1").First(&global).Error)
	assert.NoError(t, env.db.Where("external_key = ?", "custom:custom-finish").First(&custom).Error)

	var opt model.AttributeOption
	assert.NoError(t, env.db.Where("attribute_id = ? AND value = ?", global.ID, "Red").First(&opt).Error)

	var values []model.ProductVariantAttributeValue
	env.db.Find(&values)
	assert.Len(t, values, 2)
}
