package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/internal/task"
)

// SyncController 同步控制器
type SyncController struct {
	taskManager *task.TaskManager
	runRepo     repository.SyncRunRepository
}

// NewSyncController 创建同步控制器
func NewSyncController(taskManager *task.TaskManager, runRepo repository.SyncRunRepository) *SyncController {
	return &SyncController{taskManager: taskManager, runRepo: runRepo}
}

// ==================== Handler 实现 ====================

// TriggerSync 触发一轮全量同步
func (c *SyncController) TriggerSync(ctx *gin.Context) {
	if err := c.taskManager.TriggerCatalogSync(); err != nil {
		if errors.Is(err, task.ErrSyncInProgress) {
			ctx.JSON(409, gin.H{"code": 409, "message": "已有同步在运行中"})
			return
		}
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{
		"code":    200,
		"message": "全量同步已触发",
	})
}

// SyncStatus 查询同步状态
func (c *SyncController) SyncStatus(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"code": 200,
		"data": gin.H{"running": c.taskManager.SyncRunning()},
	})
}

// ListRuns 查询最近的运行记录
func (c *SyncController) ListRuns(ctx *gin.Context) {
	limit := 20
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			ctx.JSON(400, gin.H{"code": 400, "message": "无效的 limit"})
			return
		}
		limit = n
	}

	runs, err := c.runRepo.ListRecent(ctx.Request.Context(), limit)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "data": runs})
}

// GetRun 按运行 ID 查询单次运行
func (c *SyncController) GetRun(ctx *gin.Context) {
	runID := ctx.Param("run_id")
	run, err := c.runRepo.GetByRunID(ctx.Request.Context(), runID)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}
	if run == nil {
		ctx.JSON(404, gin.H{"code": 404, "message": "运行记录不存在"})
		return
	}

	ctx.JSON(200, gin.H{"code": 200, "data": run})
}
