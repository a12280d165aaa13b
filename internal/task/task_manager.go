package task

import (
	"log"

	"woo_import_v1_202601/internal/service"
)

// ==================== TaskManager 同步任务管理器 ====================

// TaskManager 统一管理后台任务
// 目前只有目录同步一类任务，保留管理器形态方便后续加任务
type TaskManager struct {
	catalogTask *CatalogSyncTask
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	CatalogEnabled bool
	CronSpec       string
	RunOnStartup   bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		CatalogEnabled: true,
		CronSpec:       "0 0 2 * * *",
		RunOnStartup:   false,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(syncService *service.SyncService, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.CatalogEnabled && syncService != nil {
		tm.catalogTask = NewCatalogSyncTask(syncService, cfg.CronSpec, cfg.RunOnStartup)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")
	if tm.catalogTask != nil {
		tm.catalogTask.Start()
	}
	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")
	if tm.catalogTask != nil {
		tm.catalogTask.Stop()
	}
	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerCatalogSync 触发一轮全量目录同步
func (tm *TaskManager) TriggerCatalogSync() error {
	if tm.catalogTask == nil {
		return ErrTaskDisabled
	}
	return tm.catalogTask.TriggerNow()
}

// SyncRunning 是否有在途同步
func (tm *TaskManager) SyncRunning() bool {
	return tm.catalogTask != nil && tm.catalogTask.Running()
}

// ==================== 错误定义 ====================

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
