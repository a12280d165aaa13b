package model

// ==================== 用户 ====================

// User 内部用户
// Email 可能是真实邮箱，也可能是由外部店铺 ID 推导的确定性合成邮箱
// （仅当来源没有任何真实身份信号时使用，保证重复运行落到同一账号）
type User struct {
	BaseModel
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone       string `gorm:"size:30;index" json:"phone"` // 规范化后的数字串
	FirstName   string `gorm:"size:100" json:"first_name"`
	LastName    string `gorm:"size:100" json:"last_name"`
	DisplayName string `gorm:"size:255" json:"display_name"`
}

func (User) TableName() string { return "users" }
