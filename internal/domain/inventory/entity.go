package inventory

import (
	"time"
)

// Stock 库存台账实体（聚合根）
// 教学要点：
// 1. 库存与图书目录分离：目录是描述性数据，台账是强一致的数值资源
// 2. Available是唯一的真相来源，所有变更走Reserve/Release/Restock
//    三个入口，绝不允许直接SET一个绝对值（会吞掉并发变更）
// 3. 预留（Reserve）即扣减：本系统不区分"锁定"与"扣减"两段，
//    下单失败靠补偿释放回来
type Stock struct {
	ID        uint
	BookID    uint // 图书ID（唯一索引）
	Available int  // 可售数量
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewStock 创建库存台账（图书发布时调用）
func NewStock(bookID uint, initial int) *Stock {
	now := time.Now()
	return &Stock{
		BookID:    bookID,
		Available: initial,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanReserve 检查可售数量是否足够
func (s *Stock) CanReserve(quantity int) bool {
	return quantity > 0 && s.Available >= quantity
}
