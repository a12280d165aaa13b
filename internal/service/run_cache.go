package service

import (
	"fmt"

	"woo_import_v1_202601/internal/model"
)

// ==================== RunCache 单次运行缓存 ====================

// RunCache 同一次运行内的查找缓存，省掉重复的存储往返
// 由编排器创建并显式注入各阶段（不做全局状态，阶段可以单测），
// 批量提交控制器每次冲刷后会清空它以压住长任务的内存增长
type RunCache struct {
	attrGroupID     int64
	attributesByKey map[string]*model.Attribute
	optionIDs       map[string]int64 // "attrID|value" -> optionID
	vendorIDs       map[string]int64 // 外部店铺 ID -> 内部卖家 ID
	mappings        map[string]int64 // "provider|type|extID" -> internalID
}

// NewRunCache 创建空缓存
func NewRunCache() *RunCache {
	c := &RunCache{}
	c.Reset()
	return c
}

// Reset 清空全部缓存项（属性分组 ID 保留：固定名查找结果跨批次不变）
func (c *RunCache) Reset() {
	c.attributesByKey = make(map[string]*model.Attribute)
	c.optionIDs = make(map[string]int64)
	c.vendorIDs = make(map[string]int64)
	c.mappings = make(map[string]int64)
}

func (c *RunCache) AttrGroupID() int64 { return c.attrGroupID }
func (c *RunCache) SetAttrGroupID(id int64) { c.attrGroupID = id }

func (c *RunCache) GetAttribute(key string) (*model.Attribute, bool) {
	a, ok := c.attributesByKey[key]
	return a, ok
}

func (c *RunCache) PutAttribute(key string, a *model.Attribute) {
	c.attributesByKey[key] = a
}

func (c *RunCache) GetOptionID(attributeID int64, value string) (int64, bool) {
	id, ok := c.optionIDs[fmt.Sprintf("%d|%s", attributeID, value)]
	return id, ok
}

func (c *RunCache) PutOptionID(attributeID int64, value string, id int64) {
	c.optionIDs[fmt.Sprintf("%d|%s", attributeID, value)] = id
}

func (c *RunCache) GetVendorID(externalID string) (int64, bool) {
	id, ok := c.vendorIDs[externalID]
	return id, ok
}

func (c *RunCache) PutVendorID(externalID string, id int64) {
	c.vendorIDs[externalID] = id
}

func (c *RunCache) GetMapping(provider, entityType, externalID string) (int64, bool) {
	id, ok := c.mappings[provider+"|"+entityType+"|"+externalID]
	return id, ok
}

func (c *RunCache) PutMapping(provider, entityType, externalID string, id int64) {
	c.mappings[provider+"|"+entityType+"|"+externalID] = id
}
