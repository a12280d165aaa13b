package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
)

// ==================== SyncRunRepository 运行记录仓库 ====================

// SyncRunRepository 同步运行记录仓库接口
type SyncRunRepository interface {
	Create(ctx context.Context, run *model.SyncRun) error
	Finish(ctx context.Context, runID string, status string, report []byte, errMsg string) error
	GetByRunID(ctx context.Context, runID string) (*model.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error)
}

type syncRunRepo struct {
	db *gorm.DB
}

// NewSyncRunRepository 创建运行记录仓库
func NewSyncRunRepository(db *gorm.DB) SyncRunRepository {
	return &syncRunRepo{db: db}
}

func (r *syncRunRepo) Create(ctx context.Context, run *model.SyncRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *syncRunRepo) Finish(ctx context.Context, runID string, status string, report []byte, errMsg string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.SyncRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]interface{}{
			"status":      status,
			"finished_at": &now,
			"report":      report,
			"error":       errMsg,
		}).Error
}

func (r *syncRunRepo) GetByRunID(ctx context.Context, runID string) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *syncRunRepo) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.SyncRun
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}
