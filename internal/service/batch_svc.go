package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"woo_import_v1_202601/internal/model"
	"woo_import_v1_202601/internal/repository"
)

// ==================== BatchController 批量提交控制器 ====================

// 所有阶段共用的提交通道：转换好的记录先进有界缓冲，
// 攒够一批在一个事务里落库，然后清掉运行缓存压住内存。
// 受控更新撞上乐观令牌冲突时，先把每个冲突实体的类型、主键、
// 内存态和两侧令牌吐出来再报错——不用挂调试器重跑也能定位。

type pendingOp int

const (
	opCreate pendingOp = iota
	opSave
	opGuarded
)

type pendingWrite struct {
	op     pendingOp
	entity interface{}
	// 受控写才有：更新前的令牌，冲突中止后用来还原内存态
	prevToken int64
}

// ConflictDiag 单个实体的并发冲突诊断
type ConflictDiag struct {
	EntityName     string `json:"entity_name"`
	PrimaryKey     int64  `json:"primary_key"`
	MemoryToken    int64  `json:"memory_token"`
	PersistedToken int64  `json:"persisted_token"`
	MemoryState    string `json:"memory_state"`
}

// ConflictReporter 冲突诊断出口（默认打日志，测试里可替换捕获）
type ConflictReporter interface {
	ReportConflicts(diags []ConflictDiag)
}

// LogConflictReporter 默认诊断出口
type LogConflictReporter struct{}

func (LogConflictReporter) ReportConflicts(diags []ConflictDiag) {
	for _, d := range diags {
		log.Printf("[BatchController] 并发冲突: 实体=%s 主键=%d 内存令牌=%d 持久化令牌=%d 内存态=%s",
			d.EntityName, d.PrimaryKey, d.MemoryToken, d.PersistedToken, d.MemoryState)
	}
}

// BatchController 批量提交控制器
type BatchController struct {
	db       *gorm.DB
	size     int
	cache    *RunCache
	reporter ConflictReporter
	pending  []pendingWrite
}

// NewBatchController 创建控制器
// size: 缓冲上限，达到即触发冲刷；cache: 冲刷成功后要清空的运行缓存
func NewBatchController(db *gorm.DB, size int, cache *RunCache, reporter ConflictReporter) *BatchController {
	if size <= 0 {
		size = 200
	}
	if reporter == nil {
		reporter = LogConflictReporter{}
	}
	return &BatchController{db: db, size: size, cache: cache, reporter: reporter}
}

// Pending 当前缓冲的记录数
func (b *BatchController) Pending() int { return len(b.pending) }

// Create 缓冲一条插入
func (b *BatchController) Create(ctx context.Context, entity interface{}) error {
	b.pending = append(b.pending, pendingWrite{op: opCreate, entity: entity})
	return b.flushIfFull(ctx)
}

// Save 缓冲一条无令牌保护的整行保存
func (b *BatchController) Save(ctx context.Context, entity interface{}) error {
	b.pending = append(b.pending, pendingWrite{op: opSave, entity: entity})
	return b.flushIfFull(ctx)
}

// GuardedSave 缓冲一条带乐观令牌保护的更新
func (b *BatchController) GuardedSave(ctx context.Context, entity model.Versioned) error {
	b.pending = append(b.pending, pendingWrite{op: opGuarded, entity: entity, prevToken: entity.VersionToken()})
	return b.flushIfFull(ctx)
}

func (b *BatchController) flushIfFull(ctx context.Context) error {
	if len(b.pending) >= b.size {
		return b.Flush(ctx)
	}
	return nil
}

// Flush 把缓冲整批落库
// 语义：一批要么整体提交要么整体丢弃，取消时绝不留半批
func (b *BatchController) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		// 协作取消：当前批整体丢弃
		b.pending = nil
		return err
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range b.pending {
			w := &b.pending[i]
			switch w.op {
			case opCreate:
				if err := tx.Create(w.entity).Error; err != nil {
					return err
				}
			case opSave:
				if err := tx.Save(w.entity).Error; err != nil {
					return err
				}
			case opGuarded:
				v := w.entity.(model.Versioned)
				v.SetVersionToken(w.prevToken + 1)
				res := tx.Model(w.entity).
					Where("row_version = ?", w.prevToken).
					Select("*").
					Omit("id", "created_at", "deleted_at").
					Updates(w.entity)
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return repository.ErrRowVersionConflict
				}
			}
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, repository.ErrRowVersionConflict) {
			b.reporter.ReportConflicts(b.collectConflicts(ctx))
		}
		// 批次中止：还原受控实体的内存令牌，丢弃缓冲，靠阶段幂等重跑恢复
		for i := range b.pending {
			if b.pending[i].op == opGuarded {
				b.pending[i].entity.(model.Versioned).SetVersionToken(b.pending[i].prevToken)
			}
		}
		b.pending = nil
		return fmt.Errorf("批量提交失败: %w", err)
	}

	b.pending = nil
	if b.cache != nil {
		b.cache.Reset()
	}
	return nil
}

// collectConflicts 事务回滚后逐个比对受控实体的持久化令牌
func (b *BatchController) collectConflicts(ctx context.Context) []ConflictDiag {
	var diags []ConflictDiag
	for i := range b.pending {
		w := &b.pending[i]
		if w.op != opGuarded {
			continue
		}
		v := w.entity.(model.Versioned)

		var persisted int64
		err := b.db.WithContext(ctx).
			Table(v.EntityName()).
			Select("row_version").
			Where("id = ?", v.PrimaryKey()).
			Scan(&persisted).Error
		if err != nil {
			persisted = -1 // 读不到持久化令牌也要把实体报出来
		}
		if persisted == w.prevToken {
			continue // 没冲突的受控写不进诊断
		}

		state, _ := json.Marshal(w.entity)
		diags = append(diags, ConflictDiag{
			EntityName:     v.EntityName(),
			PrimaryKey:     v.PrimaryKey(),
			MemoryToken:    w.prevToken,
			PersistedToken: persisted,
			MemoryState:    string(state),
		})
	}
	return diags
}
