package router

import (
	"github.com/gin-gonic/gin"

	"woo_import_v1_202601/internal/controller"
	"woo_import_v1_202601/internal/middleware"
)

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	syncCtl *controller.SyncController,
	mappingCtl *controller.MappingController) {
	// 健康检查
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API 路由组
	api := r.Group("/api")
	{
		// sync 同步管理
		sync := api.Group("/sync")
		{
			// POST /api/sync/run 手动触发全量同步，走冷却限流
			sync.POST("/run",
				middleware.GlobalSyncRateLimit(middleware.SyncTypeCatalog, 0),
				syncCtl.TriggerSync,
			)
			// GET /api/sync/status
			sync.GET("/status", syncCtl.SyncStatus)
			// GET /api/sync/runs
			sync.GET("/runs", syncCtl.ListRuns)
			// GET /api/sync/runs/:run_id
			sync.GET("/runs/:run_id", syncCtl.GetRun)
		}

		// mappings 身份映射查询
		mappings := api.Group("/mappings")
		{
			// GET /api/mappings?entity_type=product
			mappings.GET("", mappingCtl.ListMappings)
		}
	}
}
