package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
	"woo_import_v1_202601/pkg/utils"
)

// ==================== AttributeService 属性/取值归一化 ====================

// SourceAttr 来源侧声明的一条属性（全局注册表条目或商品内联自定义属性）
type SourceAttr struct {
	GlobalID int64 // > 0 表示全局属性；0 表示商品内联
	Name     string
	Options  []string // 当前这条记录上观察到的取值
}

// AttributeService 把来源属性映射到内部属性注册表
// 去重键 = 推导出的外部键；取值按 (属性ID, 去空白原值) 精确去重，不做模糊匹配
type AttributeService struct {
	repo repository.AttributeRepository
}

// NewAttributeService 创建属性归一化服务
func NewAttributeService(repo repository.AttributeRepository) *AttributeService {
	return &AttributeService{repo: repo}
}

// DeriveExternalKey 属性外部键推导
// 有全局 ID 用 "attr:<id>"，否则用 "custom:<slugify(name)>"
func DeriveExternalKey(globalID int64, name string) string {
	if globalID > 0 {
		return fmt.Sprintf("attr:%d", globalID)
	}
	return "custom:" + utils.Slugify(name)
}

// inferValueType 按当前记录观察到的去重取值个数推断值类型
// 0 → Text，1 → Option，>=2 → MultiOption
// 这是单条记录视角的启发式：后处理的记录会覆盖先前的推断（last-write-wins）
func inferValueType(options []string) string {
	distinct := make(map[string]struct{})
	for _, o := range options {
		if v := strings.TrimSpace(o); v != "" {
			distinct[v] = struct{}{}
		}
	}
	switch len(distinct) {
	case 0:
		return model.AttrTypeText
	case 1:
		return model.AttrTypeOption
	default:
		return model.AttrTypeMultiOption
	}
}

// EnsureGroup 取（或懒创建）导入属性挂靠的固定分组
func (s *AttributeService) EnsureGroup(ctx context.Context, cache *RunCache) (int64, error) {
	if cache != nil && cache.AttrGroupID() > 0 {
		return cache.AttrGroupID(), nil
	}

	g, err := s.repo.GetGroupByName(ctx, model.DefaultAttributeGroupName)
	if err != nil {
		return 0, err
	}
	if g == nil {
		g = &model.AttributeGroup{Name: model.DefaultAttributeGroupName}
		if err := s.repo.CreateGroup(ctx, g); err != nil {
			if !repository.IsUniqueViolation(err) {
				return 0, err
			}
			// 别的进程刚建好，读回来
			if g, err = s.repo.GetGroupByName(ctx, model.DefaultAttributeGroupName); err != nil {
				return 0, err
			}
		}
	}

	if cache != nil {
		cache.SetAttrGroupID(g.ID)
	}
	return g.ID, nil
}

// EnsureAttribute 按外部键取（或创建）内部属性
// 既有属性的值类型与本条记录的推断不一致时按本条覆盖并打告警，
// 让 last-write-wins 显式可见而不是悄悄改掉
func (s *AttributeService) EnsureAttribute(ctx context.Context, cache *RunCache, src SourceAttr) (*model.Attribute, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: 属性缺少名称", ErrMalformedRecord)
	}

	key := DeriveExternalKey(src.GlobalID, name)
	if cache != nil {
		if a, ok := cache.GetAttribute(key); ok {
			return a, nil
		}
	}

	inferred := inferValueType(src.Options)

	a, err := s.repo.GetByExternalKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if a == nil {
		groupID, err := s.EnsureGroup(ctx, cache)
		if err != nil {
			return nil, err
		}
		a = &model.Attribute{
			GroupID:     groupID,
			Name:        name,
			Slug:        utils.Slugify(name),
			ExternalKey: key,
			ValueType:   inferred,
		}
		if err := s.repo.CreateAttribute(ctx, a); err != nil {
			if !repository.IsUniqueViolation(err) {
				return nil, err
			}
			if a, err = s.repo.GetByExternalKey(ctx, key); err != nil || a == nil {
				return nil, fmt.Errorf("属性创建竞争后读回失败 [%s]: %w", key, err)
			}
		}
	} else if a.ValueType != inferred {
		log.Printf("[AttributeService] 属性 %s 值类型按最新记录改判: %s -> %s", key, a.ValueType, inferred)
		if err := s.repo.UpdateValueType(ctx, a.ID, inferred); err != nil {
			return nil, err
		}
		a.ValueType = inferred
	}

	if cache != nil {
		cache.PutAttribute(key, a)
	}
	return a, nil
}

// EnsureOption 按 (属性, 去空白原值) 取（或创建）取值
// 首次出现落库并进缓存，后续命中直接复用缓存 ID
func (s *AttributeService) EnsureOption(ctx context.Context, cache *RunCache, attributeID int64, raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("%w: 属性取值为空", ErrMalformedRecord)
	}

	if cache != nil {
		if id, ok := cache.GetOptionID(attributeID, value); ok {
			return id, nil
		}
	}

	o, err := s.repo.GetOption(ctx, attributeID, value)
	if err != nil {
		return 0, err
	}
	if o == nil {
		o = &model.AttributeOption{AttributeID: attributeID, Value: value}
		if err := s.repo.CreateOption(ctx, o); err != nil {
			return 0, err
		}
	}

	if cache != nil {
		cache.PutOptionID(attributeID, value, o.ID)
	}
	return o.ID, nil
}
