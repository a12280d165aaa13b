package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"woo_import_v1_202601/internal/service"
)

// ==================== CatalogSyncTask 目录同步任务 ====================

// CatalogSyncTask 全量目录同步定时任务
// 同一时刻只允许一轮在跑：定时触发撞上在途运行直接让过，
// 手动触发返回 ErrSyncInProgress
type CatalogSyncTask struct {
	syncService *service.SyncService
	cron        *cron.Cron
	cronSpec    string
	runOnStart  bool

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewCatalogSyncTask 创建目录同步任务
func NewCatalogSyncTask(syncService *service.SyncService, cronSpec string, runOnStart bool) *CatalogSyncTask {
	return &CatalogSyncTask{
		syncService: syncService,
		cron:        cron.New(cron.WithSeconds()),
		cronSpec:    cronSpec,
		runOnStart:  runOnStart,
	}
}

// Start 启动定时任务
func (t *CatalogSyncTask) Start() {
	if t.runOnStart {
		// 首次执行（延迟 10 秒，等依赖就绪）
		go func() {
			time.Sleep(10 * time.Second)
			log.Println("[CatalogSyncTask] 执行首次全量同步...")
			t.runOnce()
		}()
	}

	_, err := t.cron.AddFunc(t.cronSpec, t.runOnce)
	if err != nil {
		log.Printf("[CatalogSyncTask] 定时任务启动失败: %v", err)
		return
	}

	t.cron.Start()
	log.Printf("[CatalogSyncTask] 已启动 (cron: %s)", t.cronSpec)
}

// Stop 停止任务并取消在途运行
func (t *CatalogSyncTask) Stop() {
	stopCtx := t.cron.Stop()
	<-stopCtx.Done()

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
	log.Println("[CatalogSyncTask] 已停止")
}

// Running 是否有在途运行
func (t *CatalogSyncTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// TriggerNow 手动触发一轮同步，后台执行
// 返回本轮是否真的被触发（在途时返回 ErrSyncInProgress）
func (t *CatalogSyncTask) TriggerNow() error {
	if !t.tryAcquire() {
		return ErrSyncInProgress
	}
	go t.runLocked()
	return nil
}

// runOnce 定时入口，撞上在途运行直接让过
func (t *CatalogSyncTask) runOnce() {
	if !t.tryAcquire() {
		log.Println("[CatalogSyncTask] 上一轮尚未结束，本次触发让过")
		return
	}
	t.runLocked()
}

func (t *CatalogSyncTask) tryAcquire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false
	}
	t.running = true
	return true
}

// runLocked 持有 running 标记的前提下执行一轮
func (t *CatalogSyncTask) runLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	defer func() {
		cancel()
		t.mu.Lock()
		t.running = false
		t.cancel = nil
		t.mu.Unlock()
	}()

	if _, err := t.syncService.Run(ctx); err != nil {
		log.Printf("[CatalogSyncTask] 同步失败: %v", err)
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrSyncInProgress TaskError = "sync already in progress"
)
