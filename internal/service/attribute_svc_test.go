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
)

// ==================== 测试辅助 ====================

func setupAttributeTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.AttributeGroup{}, &model.Attribute{}, &model.AttributeOption{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func newAttributeService(db *gorm.DB) *AttributeService {
	return NewAttributeService(repository.NewAttributeRepository(db))
}

// ==================== 单元测试 ====================

func TestDeriveExternalKey(t *testing.T) {
	tests := []struct {
		name     string
		globalID int64
		attrName string
		want     string
	}{
		{"全局属性用数字键", 5, "Color", "attr:5"},
		{"内联属性用名称 slug", 0, "Custom Size", "custom:custom-size"},
		{"大小写折叠到同一键", 0, "CUSTOM SIZE", "custom:custom-size"},
		{"非拉丁名称保留", 0, "رنگ", "custom:رنگ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveExternalKey(tt.globalID, tt.attrName))
		})
	}
}

func TestAttributeService_ValueTypeInference(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		options []string
		want    string
	}{
		{"零取值是文本", nil, model.AttrTypeText},
		{"单取值是单选", []string{"Red"}, model.AttrTypeOption},
		{"重复取值折叠成单选", []string{"Red", " Red "}, model.AttrTypeOption},
		{"空白取值不计数", []string{"", "  "}, model.AttrTypeText},
		{"多取值是多选", []string{"Red", "Blue"}, model.AttrTypeMultiOption},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.EnsureAttribute(ctx, nil, SourceAttr{
				GlobalID: int64(i + 1),
				Name:     "Attr" + tt.name,
				Options:  tt.options,
			})
			assert.NoError(t, err)
			assert.Equal(t, tt.want, a.ValueType)
		})
	}
}

func TestAttributeService_ValueTypeLastWriteWins(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)
	ctx := context.Background()

	a, err := svc.EnsureAttribute(ctx, nil, SourceAttr{GlobalID: 9, Name: "Size", Options: []string{"S", "M"}})
	assert.NoError(t, err)
	assert.Equal(t, model.AttrTypeMultiOption, a.ValueType)

	// 后处理的记录观察到单取值，推断覆盖先前的
	a, err = svc.EnsureAttribute(ctx, nil, SourceAttr{GlobalID: 9, Name: "Size", Options: []string{"S"}})
	assert.NoError(t, err)
	assert.Equal(t, model.AttrTypeOption, a.ValueType)

	var persisted model.Attribute
	db.Where("external_key = ?", "attr:9").First(&persisted)
	assert.Equal(t, model.AttrTypeOption, persisted.ValueType)
}

func TestAttributeService_EnsureAttribute_NoDuplicateForSameKey(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)
	ctx := context.Background()

	a1, err := svc.EnsureAttribute(ctx, nil, SourceAttr{GlobalID: 0, Name: "Material", Options: []string{"Wood"}})
	assert.NoError(t, err)
	a2, err := svc.EnsureAttribute(ctx, nil, SourceAttr{GlobalID: 0, Name: "material", Options: []string{"Wood"}})
	assert.NoError(t, err)
	assert.Equal(t, a1.ID, a2.ID, "名称大小写不同推导出同一外部键")

	var count int64
	db.Model(&model.Attribute{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAttributeService_MissingName(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)

	_, err := svc.EnsureAttribute(context.Background(), nil, SourceAttr{GlobalID: 0, Name: "   "})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestAttributeService_EnsureOption(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)
	ctx := context.Background()

	a, err := svc.EnsureAttribute(ctx, nil, SourceAttr{GlobalID: 3, Name: "Color", Options: []string{"Red", "Blue"}})
	assert.NoError(t, err)

	id1, err := svc.EnsureOption(ctx, nil, a.ID, "Red")
	assert.NoError(t, err)
	id2, err := svc.EnsureOption(ctx, nil, a.ID, "  Red  ")
	assert.NoError(t, err)
	assert.Equal(t, id1, id2, "去空白后的同一取值必须复用同一行")

	// 大小写不同是不同取值，不做模糊匹配
	id3, err := svc.EnsureOption(ctx, nil, a.ID, "red")
	assert.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	_, err = svc.EnsureOption(ctx, nil, a.ID, "   ")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	var count int64
	db.Model(&model.AttributeOption{}).Where("attribute_id = ?", a.ID).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestAttributeService_EnsureGroup_Lazy(t *testing.T) {
	db := setupAttributeTestDB(t)
	svc := newAttributeService(db)
	ctx := context.Background()

	id1, err := svc.EnsureGroup(ctx, nil)
	assert.NoError(t, err)
	id2, err := svc.EnsureGroup(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)

	var count int64
	db.Model(&model.AttributeGroup{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
