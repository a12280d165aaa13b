package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Versioned 带乐观并发令牌的实体
// 批量提交控制器靠它做受控更新和冲突诊断
type Versioned interface {
	PrimaryKey() int64
	EntityName() string
	VersionToken() int64
	SetVersionToken(v int64)
}
