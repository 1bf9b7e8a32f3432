package cart

import (
	"sort"
	"time"
)

// CartStatus 购物车状态
// 教学要点：
// 1. 购物车只有两个状态：敞开（可编辑）和已结算（只读）
// 2. open→consumed是单向转换，结算后的购物车永远不会"复活"，
//    再次加购会创建一辆新车，这是防止重复下单的关键设计
type CartStatus int

const (
	CartStatusOpen     CartStatus = 1 // 敞开（可加购、可结算）
	CartStatusConsumed CartStatus = 2 // 已结算（生成过订单，只读）
)

// String 实现Stringer接口（方便日志输出）
func (s CartStatus) String() string {
	switch s {
	case CartStatusOpen:
		return "敞开"
	case CartStatusConsumed:
		return "已结算"
	default:
		return "未知状态"
	}
}

// Cart 购物车实体（聚合根）
// 教学要点：
// 1. 一个用户同一时刻最多一辆敞开的购物车（数据库唯一索引保证）
// 2. CartItem以BookID为业务键，重复加购合并数量而不是新增一行
// 3. 行上保存加入时的价格/书名快照，改价改名不影响已有行
type Cart struct {
	ID        uint
	UserID    uint       // 车主用户ID
	Status    CartStatus // 状态
	Items     []CartItem // 购物车行（聚合内的子实体）
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem 购物车行
// Title/UnitPrice是加入时的快照，不直接关联Book对象（避免跨聚合引用）
type CartItem struct {
	ID        uint
	CartID    uint   // 所属购物车ID
	BookID    uint   // 图书ID
	Title     string // 加入时的书名快照
	UnitPrice int64  // 加入时的单价快照（分）
	Quantity  int    // 数量
}

// Subtotal 行小计（分）
func (i *CartItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// NewCart 创建新购物车（工厂方法）
func NewCart(userID uint) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Status:    CartStatusOpen,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsOpen 购物车是否可编辑
func (c *Cart) IsOpen() bool {
	return c.Status == CartStatusOpen
}

// IsEmpty 购物车是否为空
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddLine 加购（领域行为）
// 业务规则：
// 1. 只有敞开的购物车可以加购
// 2. 数量必须>0
// 3. 同一本书重复加购时合并数量，保留首次加入时的价格快照
func (c *Cart) AddLine(bookID uint, title string, unitPrice int64, quantity int) error {
	if !c.IsOpen() {
		return ErrCartConsumed
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	for idx := range c.Items {
		if c.Items[idx].BookID == bookID {
			c.Items[idx].Quantity += quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}

	c.Items = append(c.Items, CartItem{
		CartID:    c.ID,
		BookID:    bookID,
		Title:     title,
		UnitPrice: unitPrice,
		Quantity:  quantity,
	})
	c.UpdatedAt = time.Now()
	return nil
}

// UpdateQuantity 修改某一行的数量（覆盖式，不是增量）
// 业务规则：数量必须>0；改成0请走RemoveLine
func (c *Cart) UpdateQuantity(bookID uint, quantity int) error {
	if !c.IsOpen() {
		return ErrCartConsumed
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	for idx := range c.Items {
		if c.Items[idx].BookID == bookID {
			c.Items[idx].Quantity = quantity
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine 删除某一行
// 幂等删除：行不存在不算错误，返回值表示是否真的删掉了一行
// （DELETE请求重试时第二次落在空行上，不应报错）
func (c *Cart) RemoveLine(bookID uint) (bool, error) {
	if !c.IsOpen() {
		return false, ErrCartConsumed
	}

	for idx := range c.Items {
		if c.Items[idx].BookID == bookID {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			c.UpdatedAt = time.Now()
			return true, nil
		}
	}
	return false, nil
}

// Total 购物车商品总金额（分），按行快照价计算
func (c *Cart) Total() int64 {
	var total int64
	for idx := range c.Items {
		total += c.Items[idx].Subtotal()
	}
	return total
}

// MarkConsumed 标记为已结算（领域行为）
// 教学要点：内存状态的转换；并发安全的"只许成功一次"
// 由仓储层的条件UPDATE保证（见Repository.Consume）
func (c *Cart) MarkConsumed() error {
	if !c.IsOpen() {
		return ErrCartConsumed
	}
	c.Status = CartStatusConsumed
	c.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 检查购物车是否属于指定用户
func (c *Cart) IsOwnedBy(userID uint) bool {
	return c.UserID == userID
}

// SortedItems 返回按BookID升序排列的行副本
// 下单时按固定顺序逐行预留库存，两个并发订单即使包含相同的
// 几本书也会以同一顺序竞争库存行，避免交叉等待
func (c *Cart) SortedItems() []CartItem {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	sort.Slice(items, func(i, j int) bool {
		return items[i].BookID < items[j].BookID
	})
	return items
}
