package inventory

import "time"

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeReserve ChangeType = "RESERVE" // 预留（下单扣减）
	ChangeTypeRelease ChangeType = "RELEASE" // 释放（下单失败补偿、取消订单）
	ChangeTypeRestock ChangeType = "RESTOCK" // 补货（店员操作）
)

// Log 库存变更日志
// 教学要点：
// 1. 只增不改（Append-Only）：审计、对账、异常排查都靠它
// 2. 记录关联订单号与操作人，每一次数量变动都可追溯
type Log struct {
	ID         uint
	BookID     uint       // 图书ID
	ChangeType ChangeType // 变更类型
	Quantity   int        // 变更数量（正数=增加，负数=减少）
	OrderNo    string     // 关联订单号（补货时为空）
	OperatorID uint       // 操作人用户ID（系统自动变更时为买家ID）
	Remark     string     // 备注
	CreatedAt  time.Time
}

// NewReserveLog 创建预留日志
func NewReserveLog(bookID uint, quantity int, orderNo string, operatorID uint) *Log {
	return &Log{
		BookID:     bookID,
		ChangeType: ChangeTypeReserve,
		Quantity:   -quantity, // 负数表示减少
		OrderNo:    orderNo,
		OperatorID: operatorID,
	}
}

// NewReleaseLog 创建释放日志
func NewReleaseLog(bookID uint, quantity int, orderNo string, operatorID uint, reason string) *Log {
	return &Log{
		BookID:     bookID,
		ChangeType: ChangeTypeRelease,
		Quantity:   quantity,
		OrderNo:    orderNo,
		OperatorID: operatorID,
		Remark:     reason,
	}
}

// NewRestockLog 创建补货日志
func NewRestockLog(bookID uint, quantity int, operatorID uint, remark string) *Log {
	return &Log{
		BookID:     bookID,
		ChangeType: ChangeTypeRestock,
		Quantity:   quantity,
		OperatorID: operatorID,
		Remark:     remark,
	}
}
