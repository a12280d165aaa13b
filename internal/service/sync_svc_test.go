package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/woo"
)

// ==================== 来源桩 ====================

// 各端点第 1 页的罐头响应，后续页一律返回空数组（短页停表）
var sourceFixture = map[string]string{
	"/wc/v3/products/categories": `[
		{"id": 1, "name": "Clothing", "slug": "clothing"},
		{"id": 2, "name": "Shirts", "slug": "shirts", "parent": 1}
	]`,
	"/wc/v3/products/tags": `[
		{"id": 5, "name": "Summer", "slug": "summer"}
	]`,
	"/wc/v3/products/attributes": `[
		{"id": 1, "name": "Color", "slug": "pa_color", "type": "select"}
	]`,
	"/wc/v3/products/attributes/1/terms": `[
		{"id": 11, "name": "Red", "slug": "red"},
		{"id": 12, "name": "Blue", "slug": "blue"}
	]`,
	"/wc/v3/products": `[
		{"id": 100, "name": "Plain Tee", "slug": "plain-tee", "type": "simple", "status": "publish",
		 "regular_price": "100", "sale_price": "80", "stock_status": "instock",
		 "categories": [{"id": 1, "name": "Clothing"}], "tags": [{"id": 5, "name": "Summer"}]},
		{"id": 200, "name": "Vari Tee", "slug": "vari-tee", "type": "variable", "status": "publish",
		 "regular_price": "120", "stock_status": "instock",
		 "categories": [{"id": 2, "name": "Shirts"}], "variations": [201],
		 "store": {"id": 7, "name": "Acme Store"}},
		{"id": 300, "name": "Orphan", "slug": "orphan", "type": "simple", "status": "publish",
		 "categories": [{"id": 999, "name": "Ghost"}]}
	]`,
	"/wc/v3/products/200/variations": `[
		{"id": 201, "sku": "VT-RED", "regular_price": "50", "stock_status": "instock",
		 "attributes": [{"id": 1, "name": "Color", "option": "Red"}]}
	]`,
	"/dokan/v1/stores": `[
		{"id": 7, "store_name": "Acme Store", "first_name": "Ada", "email": "owner@example.com",
		 "enabled": true, "shop_url": "https://shop.example.com/acme"}
	]`,
	"/wp/v2/categories": `[
		{"id": 21, "name": "News", "slug": "news"}
	]`,
	"/wp/v2/tags":  `[]`,
	"/wp/v2/posts": `[
		{"id": 31, "slug": "hello", "status": "publish",
		 "title": {"rendered": "Hello"}, "content": {"rendered": "<p>hi</p>"},
		 "categories": [21]}
	]`,
}

type sourceStub struct {
	srv *httptest.Server
	// 置为 true 后商品端点返回 500，模拟来源挂掉
	failProducts bool
}

func newSourceStub(t *testing.T) *sourceStub {
	stub := &sourceStub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if stub.failProducts && r.URL.Path == "/wc/v3/products" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"internal error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		page := r.URL.Query().Get("page")
		body, ok := sourceFixture[r.URL.Path]
		if !ok || (page != "" && page != "1") {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(stub.srv.Close)
	return stub
}

// ==================== 全量装配 ====================

func setupSyncTest(t *testing.T, stub *sourceStub) (*gorm.DB, *SyncService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.ExternalIdentityMap{},
		&model.Category{}, &model.Tag{},
		&model.AttributeGroup{}, &model.Attribute{}, &model.AttributeOption{},
		&model.Product{}, &model.ProductCategory{}, &model.ProductTag{},
		&model.ProductVariant{}, &model.ProductVariantAttributeValue{},
		&model.MediaAsset{}, &model.ProductSeoMeta{},
		&model.User{}, &model.Vendor{}, &model.VendorMember{},
		&model.VendorOffer{}, &model.VendorOfferVariant{},
		&model.BlogPost{}, &model.BlogCategory{}, &model.BlogTag{},
		&model.BlogPostCategory{}, &model.BlogPostTag{},
		&model.SyncRun{},
	); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}

	client := woo.NewClient(woo.ClientConfig{BaseURL: stub.srv.URL})

	identityRepo := repository.NewIdentityMapRepository(db)
	productRepo := repository.NewProductRepository(db)
	offerRepo := repository.NewOfferRepository(db)

	cache := NewRunCache()
	batch := NewBatchController(db, 50, cache, LogConflictReporter{})
	identity := NewIdentityService(identityRepo, "dokan")
	attrSvc := NewAttributeService(repository.NewAttributeRepository(db))
	variants := NewVariantService(productRepo, offerRepo, attrSvc, identity, batch)
	vendors := NewVendorService(repository.NewUserRepository(db), repository.NewVendorRepository(db), identity)

	svc := NewSyncService(SyncDeps{
		Client:       client,
		Identity:     identity,
		Attrs:        attrSvc,
		Variants:     variants,
		Vendors:      vendors,
		Storage:      nil, // 测试不镜像图片
		Scraper:      nil, // 测试不抓 SEO
		Batch:        batch,
		Cache:        cache,
		CategoryRepo: repository.NewCategoryRepository(db),
		TagRepo:      repository.NewTagRepository(db),
		ProductRepo:  productRepo,
		OfferRepo:    offerRepo,
		BlogRepo:     repository.NewBlogRepository(db),
		RunRepo:      repository.NewSyncRunRepository(db),
	})
	return db, svc
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	var n int64
	if err := db.Model(m).Count(&n).Error; err != nil {
		t.Fatalf("统计行数失败: %v", err)
	}
	return n
}

// ==================== 端到端 ====================

func TestSyncService_FullRunIsIdempotent(t *testing.T) {
	stub := newSourceStub(t)
	db, svc := setupSyncTest(t, stub)
	ctx := context.Background()

	report, err := svc.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, model.RunStatusSucceeded, report.Status)
	assert.Len(t, report.Stages, 7)

	// 分类树：Shirts 的父指针指向 Clothing 的内部 ID
	var clothing, shirts model.Category
	assert.NoError(t, db.Where("slug = ?", "clothing").First(&clothing).Error)
	assert.NoError(t, db.Where("slug = ?", "shirts").First(&shirts).Error)
	if assert.NotNil(t, shirts.ParentID) {
		assert.Equal(t, clothing.ID, *shirts.ParentID)
	}

	// 商品：100/200 落库，300 的分类引用无法映射，整条跳过
	assert.Equal(t, int64(2), countRows(t, db, &model.Product{}))
	var plain, vari model.Product
	assert.NoError(t, db.Where("slug = ?", "plain-tee").First(&plain).Error)
	assert.NoError(t, db.Where("slug = ?", "vari-tee").First(&vari).Error)
	assert.Equal(t, model.ProductKindSimple, plain.Kind)
	assert.Equal(t, model.ProductKindVariable, vari.Kind)

	// 变体与属性注册表
	var variant model.ProductVariant
	assert.NoError(t, db.Where("product_id = ?", vari.ID).First(&variant).Error)
	assert.Equal(t, "VT-RED", variant.SKU)
	var color model.Attribute
	assert.NoError(t, db.Where("external_key = ?", "attr:1").First(&color).Error)
	assert.Equal(t, int64(2), countRows(t, db, &model.AttributeOption{})) // Red / Blue

	// 卖家归属：Vari Tee 归 Acme，Plain Tee 归平台兜底卖家
	var acme, fallback model.Vendor
	assert.NoError(t, db.Where("slug = ?", "marketplace").First(&fallback).Error)
	assert.NoError(t, db.Where("slug <> ?", "marketplace").First(&acme).Error)
	assert.Equal(t, "Acme Store", acme.Name)
	assert.Equal(t, acme.ID, vari.VendorID)
	assert.Equal(t, fallback.ID, plain.VendorID)

	// 报价跟着归属走
	var variOffer model.VendorOffer
	assert.NoError(t, db.Where("product_id = ?", vari.ID).First(&variOffer).Error)
	assert.Equal(t, acme.ID, variOffer.VendorID)

	// 博客
	var post model.BlogPost
	assert.NoError(t, db.Where("slug = ?", "hello").First(&post).Error)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, int64(1), countRows(t, db, &model.BlogPostCategory{}))

	// ---------- 第二轮：完全幂等 ----------
	report2, err := svc.Run(ctx)
	assert.NoError(t, err)
	assert.Equal(t, model.RunStatusSucceeded, report2.Status)

	assert.Equal(t, int64(2), countRows(t, db, &model.Product{}))
	assert.Equal(t, int64(2), countRows(t, db, &model.Vendor{}))
	assert.Equal(t, int64(2), countRows(t, db, &model.VendorOffer{}))
	assert.Equal(t, int64(1), countRows(t, db, &model.BlogPost{}))
	assert.Equal(t, int64(1), countRows(t, db, &model.ProductVariant{}))

	// 整组置换后内部变体 ID 不漂移
	var variant2 model.ProductVariant
	assert.NoError(t, db.Where("product_id = ?", vari.ID).First(&variant2).Error)
	assert.Equal(t, variant.ID, variant2.ID)

	// 两轮运行记录都落了盘
	var runs []model.SyncRun
	assert.NoError(t, db.Order("id").Find(&runs).Error)
	if assert.Len(t, runs, 2) {
		assert.Equal(t, model.RunStatusSucceeded, runs[0].Status)
		assert.Equal(t, model.RunStatusSucceeded, runs[1].Status)
		assert.NotNil(t, runs[0].FinishedAt)
	}
}

func TestSyncService_SourceFailureMarksRunFailed(t *testing.T) {
	stub := newSourceStub(t)
	stub.failProducts = true
	db, svc := setupSyncTest(t, stub)

	report, err := svc.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, model.RunStatusFailed, report.Status)
	assert.Contains(t, err.Error(), "products")

	var run model.SyncRun
	assert.NoError(t, db.Where("run_id = ?", report.RunID).First(&run).Error)
	assert.Equal(t, model.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)

	// 失败点之前的阶段已提交的数据保留（分类/属性阶段在商品阶段之前）
	assert.Equal(t, int64(2), countRows(t, db, &model.Category{}))
	assert.Equal(t, int64(1), countRows(t, db, &model.Attribute{}))
}
