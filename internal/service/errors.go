package service

import "errors"

// ==================== 错误分类 ====================

// 同步阶段内的可降级错误：跳过当前记录并计数，不中断阶段。
// 只有网络错误和不可恢复的存储错误会让整个阶段失败。

var (
	// ErrUnmappedReference 记录引用了一个还没有身份映射的外部实体
	ErrUnmappedReference = errors.New("unmapped external reference")

	// ErrMalformedRecord 来源记录缺必填字段（比如没有 slug）
	ErrMalformedRecord = errors.New("malformed source record")
)
