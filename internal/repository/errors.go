package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrRowVersionConflict 乐观并发令牌不匹配
// 受控更新发现持久化行的 row_version 与读取时不一致时返回，
// 批量提交控制器会在重新抛出前补充逐实体诊断信息
var ErrRowVersionConflict = errors.New("row version conflict")

// IsUniqueViolation 唯一约束冲突判定
// 统一覆盖 gorm 的翻译错误、lib/pq 的 23505 以及测试用 sqlite 的报错文案
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key value")
}
