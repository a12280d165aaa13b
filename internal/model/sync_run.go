package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 同步运行记录 ====================

// 运行状态
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusCanceled  = "canceled"
)

// SyncRun 一次完整管线运行
type SyncRun struct {
	BaseModel
	RunID      string         `gorm:"size:36;uniqueIndex;not null" json:"run_id"`
	Status     string         `gorm:"size:20;index" json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	Report     datatypes.JSON `gorm:"type:jsonb" json:"report"` // 各阶段计数器
	Error      string         `gorm:"type:text" json:"error"`
}

func (SyncRun) TableName() string { return "sync_runs" }
