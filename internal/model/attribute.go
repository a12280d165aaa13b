package model

// ==================== 属性注册表 ====================

// DefaultAttributeGroupName 导入属性挂靠的固定分组名
// 首次用到时懒创建，此后按名字查找复用（进程内和跨运行都复用）
const DefaultAttributeGroupName = "Imported Attributes"

// 属性值类型
// 按单条记录上观察到的取值个数推断：0 → Text，1 → Option，>=2 → MultiOption
// 后处理的记录会覆盖先处理记录的推断结果（last-write-wins，见 attribute_svc）
const (
	AttrTypeText        = "text"
	AttrTypeOption      = "option"
	AttrTypeMultiOption = "multi_option"
)

// AttributeGroup 属性分组
type AttributeGroup struct {
	BaseModel
	Name     string `gorm:"size:255;uniqueIndex;not null" json:"name"`
	ParentID *int64 `gorm:"index" json:"parent_id"`
}

func (AttributeGroup) TableName() string { return "attribute_groups" }

// Attribute 内部属性
// ExternalKey 是归一化后的外部键："attr:<globalID>" 或 "custom:<slug>"
type Attribute struct {
	BaseModel
	GroupID     int64  `gorm:"index;not null" json:"group_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Slug        string `gorm:"size:100;index" json:"slug"`
	ExternalKey string `gorm:"size:120;uniqueIndex" json:"external_key"`
	ValueType   string `gorm:"size:20;default:text" json:"value_type"`
}

func (Attribute) TableName() string { return "attributes" }

// AttributeOption 属性取值
// 身份 = (attribute_id, 去首尾空白后的原值)；不做模糊匹配，
// 大小写/空白差异会产生不同取值（已知限制）
type AttributeOption struct {
	BaseModel
	AttributeID int64  `gorm:"not null;uniqueIndex:uq_attr_value,priority:1" json:"attribute_id"`
	Value       string `gorm:"size:500;not null;uniqueIndex:uq_attr_value,priority:2" json:"value"`
}

func (AttributeOption) TableName() string { return "attribute_options" }
