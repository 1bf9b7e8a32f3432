package shipping

import (
	"time"
)

// Method 配送方式实体
// 设计说明：
// 1. 配送方式是一张小配置表（平邮/快递/次日达），由店员维护
// 2. Active=false表示下架：已有订单上保存的是名称与运费快照，
//    下架不影响历史订单，只是新订单不能再选
type Method struct {
	ID            uint
	Name          string // 配送方式名称
	Fee           int64  // 运费（分）
	EstimatedDays int    // 预计送达天数
	Active        bool   // 是否可选
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMethod 创建配送方式（工厂方法）
func NewMethod(name string, fee int64, estimatedDays int) *Method {
	now := time.Now()
	return &Method{
		Name:          name,
		Fee:           fee,
		EstimatedDays: estimatedDays,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Deactivate 下架配送方式
func (m *Method) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now()
}
