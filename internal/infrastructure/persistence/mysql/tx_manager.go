package mysql

import (
	"context"

	"gorm.io/gorm"
)

// txKey context中事务DB的键类型
type txKey struct{}

// TxManager 事务管理器
// 教学要点：
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB（避免全局变量）
// 3. 支持嵌套事务（GORM自动使用Savepoint）
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn函数内的所有Repository操作都会在同一事务中执行；
// fn返回error时自动ROLLBACK，返回nil时自动COMMIT
//
// 使用示例（下单的落库步骤）：
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    if err := cartRepo.Consume(ctx, cart.ID); err != nil {
//	        return err // 购物车已被结算，回滚
//	    }
//	    return orderRepo.Create(ctx, o)
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 将事务DB注入到Context中，Repository的getDB从这里提取
		txCtx := context.WithValue(ctx, txKey{}, tx)
		return fn(txCtx)
	})
}

// getDB 从context获取事务DB，如果没有则使用默认DB
// 教学要点：事务传递机制，所有仓储实现共用
func getDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
