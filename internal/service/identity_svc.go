package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
)

// ==================== IdentityService 外部身份映射 ====================

// IdentityService 外部 → 内部身份解析
// GetOrCreate 是全系统唯一设计为并发安全的变更入口：
// 先查 → 进程内互斥 → 二次查 → 建实体 + 插映射 → 唯一冲突时读回赢家
// 任何并发组合下一个键都只产生一条映射，且所有调用方拿到同一个内部 ID
type IdentityService struct {
	repo     repository.IdentityMapRepository
	provider string

	// 只护住映射判定与插入这个临界区，不跨任何来源网络调用持有
	mu sync.Mutex
}

// NewIdentityService 创建身份映射服务
func NewIdentityService(repo repository.IdentityMapRepository, provider string) *IdentityService {
	return &IdentityService{repo: repo, provider: provider}
}

// Provider 当前运行的来源平台判别串
func (s *IdentityService) Provider() string { return s.provider }

// Find 纯查询；没有映射返回 found=false
func (s *IdentityService) Find(ctx context.Context, entityType, externalID string) (int64, bool, error) {
	m, err := s.repo.Find(ctx, s.provider, entityType, externalID)
	if err != nil {
		return 0, false, err
	}
	if m == nil {
		return 0, false, nil
	}
	return m.InternalID, true, nil
}

// EntityCreator 首次观察到外部记录时创建内部实体行，返回内部 ID
type EntityCreator func(ctx context.Context) (int64, error)

// GetOrCreate 取既有映射，没有就建实体 + 建映射
// cache 可为 nil；slug 只在首次建映射时记录
func (s *IdentityService) GetOrCreate(ctx context.Context, cache *RunCache, entityType, externalID, slug string, create EntityCreator) (int64, error) {
	// 1. 运行缓存
	if cache != nil {
		if id, ok := cache.GetMapping(s.provider, entityType, externalID); ok {
			return id, nil
		}
	}

	// 2. 无锁快路径
	m, err := s.repo.Find(ctx, s.provider, entityType, externalID)
	if err != nil {
		return 0, err
	}
	if m != nil {
		_ = s.repo.Touch(ctx, m.ID, time.Now())
		if cache != nil {
			cache.PutMapping(s.provider, entityType, externalID, m.InternalID)
		}
		return m.InternalID, nil
	}

	// 3. 临界区：二次确认后再创建
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err = s.repo.Find(ctx, s.provider, entityType, externalID)
	if err != nil {
		return 0, err
	}
	if m != nil {
		if cache != nil {
			cache.PutMapping(s.provider, entityType, externalID, m.InternalID)
		}
		return m.InternalID, nil
	}

	internalID, err := create(ctx)
	if err != nil {
		return 0, fmt.Errorf("创建内部实体失败 [%s/%s]: %w", entityType, externalID, err)
	}

	row := &model.ExternalIdentityMap{
		Provider:     s.provider,
		EntityType:   entityType,
		ExternalID:   externalID,
		InternalID:   internalID,
		ExternalSlug: slug,
		LastSyncedAt: time.Now(),
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		if repository.IsUniqueViolation(err) {
			// 跨进程写入者抢先了：身份竞争内部消化，读回赢家的 ID
			winner, ferr := s.repo.Find(ctx, s.provider, entityType, externalID)
			if ferr != nil {
				return 0, ferr
			}
			if winner != nil {
				if cache != nil {
					cache.PutMapping(s.provider, entityType, externalID, winner.InternalID)
				}
				return winner.InternalID, nil
			}
		}
		return 0, fmt.Errorf("写入身份映射失败 [%s/%s]: %w", entityType, externalID, err)
	}

	if cache != nil {
		cache.PutMapping(s.provider, entityType, externalID, internalID)
	}
	return internalID, nil
}
