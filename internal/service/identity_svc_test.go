package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
)

// ==================== 测试辅助 ====================

func setupIdentityTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.ExternalIdentityMap{}, &model.Category{}); err != nil {
		t.Fatalf("迁移测试表失败: %v", err)
	}
	return db
}

func newIdentityService(db *gorm.DB) *IdentityService {
	return NewIdentityService(repository.NewIdentityMapRepository(db), "dokan")
}

// ==================== 单元测试 ====================

func TestIdentityService_GetOrCreate_CreatesOnce(t *testing.T) {
	db := setupIdentityTestDB(t)
	svc := newIdentityService(db)
	ctx := context.Background()

	calls := 0
	creator := func(ctx context.Context) (int64, error) {
		calls++
		c := &model.Category{Name: "Phones", Slug: "phones"}
		if err := db.Create(c).Error; err != nil {
			return 0, err
		}
		return c.ID, nil
	}

	id1, err := svc.GetOrCreate(ctx, nil, model.EntityCategory, "42", "phones", creator)
	assert.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := svc.GetOrCreate(ctx, nil, model.EntityCategory, "42", "phones", creator)
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, calls, "创建回调只应执行一次")

	var count int64
	db.Model(&model.ExternalIdentityMap{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIdentityService_SameExternalIDDifferentEntityType(t *testing.T) {
	db := setupIdentityTestDB(t)
	svc := newIdentityService(db)
	ctx := context.Background()

	mk := func(name string) EntityCreator {
		return func(ctx context.Context) (int64, error) {
			c := &model.Category{Name: name, Slug: name}
			if err := db.Create(c).Error; err != nil {
				return 0, err
			}
			return c.ID, nil
		}
	}

	catID, err := svc.GetOrCreate(ctx, nil, model.EntityCategory, "7", "", mk("a"))
	assert.NoError(t, err)
	tagID, err := svc.GetOrCreate(ctx, nil, model.EntityTag, "7", "", mk("b"))
	assert.NoError(t, err)
	assert.NotEqual(t, catID, tagID, "同一外部 ID 在不同实体类型下是两条独立映射")
}

func TestIdentityService_Find_Missing(t *testing.T) {
	db := setupIdentityTestDB(t)
	svc := newIdentityService(db)

	_, found, err := svc.Find(context.Background(), model.EntityProduct, "999")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestIdentityService_GetOrCreate_Concurrent(t *testing.T) {
	db := setupIdentityTestDB(t)
	svc := newIdentityService(db)
	ctx := context.Background()

	var calls int32
	creator := func(ctx context.Context) (int64, error) {
		atomic.AddInt32(&calls, 1)
		c := &model.Category{Name: "Race", Slug: "race"}
		if err := db.Create(c).Error; err != nil {
			return 0, err
		}
		return c.ID, nil
	}

	const workers = 8
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ids[n], errs[n] = svc.GetOrCreate(ctx, nil, model.EntityCategory, "race-1", "race", creator)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i], "所有并发调用方必须拿到同一个内部 ID")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "并发下创建回调只应执行一次")

	var count int64
	db.Model(&model.ExternalIdentityMap{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestIdentityService_GetOrCreate_UsesRunCache(t *testing.T) {
	db := setupIdentityTestDB(t)
	svc := newIdentityService(db)
	ctx := context.Background()
	cache := NewRunCache()

	id1, err := svc.GetOrCreate(ctx, cache, model.EntityCategory, "5", "", func(ctx context.Context) (int64, error) {
		c := &model.Category{Name: "Cached", Slug: "cached"}
		if err := db.Create(c).Error; err != nil {
			return 0, err
		}
		return c.ID, nil
	})
	assert.NoError(t, err)

	// 映射表清空后缓存命中仍然返回原 ID
	db.Exec("DELETE FROM external_identity_maps")
	id2, err := svc.GetOrCreate(ctx, cache, model.EntityCategory, "5", "", func(ctx context.Context) (int64, error) {
		t.Fatal("缓存命中时不应触发创建")
		return 0, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)
}
