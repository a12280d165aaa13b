package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"woo_import_v1_202601/internal/repository"
)

// MappingController 身份映射查询控制器
type MappingController struct {
	mapRepo  repository.IdentityMapRepository
	provider string
}

// NewMappingController 创建身份映射控制器
func NewMappingController(mapRepo repository.IdentityMapRepository, provider string) *MappingController {
	return &MappingController{mapRepo: mapRepo, provider: provider}
}

// ==================== Handler 实现 ====================

// ListMappings 按实体类型分页查询外部身份映射
func (c *MappingController) ListMappings(ctx *gin.Context) {
	entityType := ctx.Query("entity_type")
	if entityType == "" {
		ctx.JSON(400, gin.H{"code": 400, "message": "entity_type 必填"})
		return
	}

	page := parsePositive(ctx.DefaultQuery("page", "1"))
	pageSize := parsePositive(ctx.DefaultQuery("page_size", "50"))
	if page == 0 || pageSize == 0 || pageSize > 500 {
		ctx.JSON(400, gin.H{"code": 400, "message": "无效的分页参数"})
		return
	}

	items, total, err := c.mapRepo.ListByEntityType(ctx.Request.Context(), c.provider, entityType, page, pageSize)
	if err != nil {
		ctx.JSON(500, gin.H{"code": 500, "message": err.Error()})
		return
	}

	ctx.JSON(200, gin.H{
		"code": 200,
		"data": gin.H{
			"items":     items,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// ==================== 工具函数 ====================

func parsePositive(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
