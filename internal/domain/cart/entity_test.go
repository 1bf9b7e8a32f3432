package cart

import (
	"errors"
	"testing"

	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// TestCart_AddLine_MergesQuantity 重复加购同一本书合并数量
func TestCart_AddLine_MergesQuantity(t *testing.T) {
	c := NewCart(1)

	if err := c.AddLine(10, "Go程序设计语言", 7900, 1); err != nil {
		t.Fatalf("首次加购失败: %v", err)
	}
	if err := c.AddLine(10, "Go程序设计语言", 7900, 2); err != nil {
		t.Fatalf("重复加购失败: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("期望合并为1行，实际%d行", len(c.Items))
	}
	if c.Items[0].Quantity != 3 {
		t.Errorf("期望数量3，实际%d", c.Items[0].Quantity)
	}
}

// TestCart_AddLine_KeepsPriceSnapshot 合并时保留首次加入的价格快照
func TestCart_AddLine_KeepsPriceSnapshot(t *testing.T) {
	c := NewCart(1)

	_ = c.AddLine(10, "Go程序设计语言", 7900, 1)
	// 第二次加购时商品已改价，行上价格不应变化
	_ = c.AddLine(10, "Go程序设计语言", 9900, 1)

	if c.Items[0].UnitPrice != 7900 {
		t.Errorf("期望保留快照价7900，实际%d", c.Items[0].UnitPrice)
	}
	if got := c.Total(); got != 15800 {
		t.Errorf("期望总金额15800，实际%d", got)
	}
}

// TestCart_AddLine_InvalidQuantity 数量必须大于0
func TestCart_AddLine_InvalidQuantity(t *testing.T) {
	c := NewCart(1)

	if err := c.AddLine(10, "书", 100, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("期望ErrInvalidQuantity，实际%v", err)
	}
	if err := c.AddLine(10, "书", 100, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("期望ErrInvalidQuantity，实际%v", err)
	}
}

// TestCart_UpdateQuantity 覆盖式修改数量
func TestCart_UpdateQuantity(t *testing.T) {
	c := NewCart(1)
	_ = c.AddLine(10, "书", 100, 5)

	if err := c.UpdateQuantity(10, 2); err != nil {
		t.Fatalf("修改数量失败: %v", err)
	}
	if c.Items[0].Quantity != 2 {
		t.Errorf("期望数量2，实际%d", c.Items[0].Quantity)
	}

	// 改成0不允许
	if err := c.UpdateQuantity(10, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("期望ErrInvalidQuantity，实际%v", err)
	}

	// 不存在的行
	if err := c.UpdateQuantity(99, 1); !errors.Is(err, ErrLineNotFound) {
		t.Errorf("期望ErrLineNotFound，实际%v", err)
	}
}

// TestCart_RemoveLine 删行
func TestCart_RemoveLine(t *testing.T) {
	c := NewCart(1)
	_ = c.AddLine(10, "书A", 100, 1)
	_ = c.AddLine(20, "书B", 200, 1)

	removed, err := c.RemoveLine(10)
	if err != nil {
		t.Fatalf("删行失败: %v", err)
	}
	if !removed {
		t.Error("期望removed=true")
	}
	if len(c.Items) != 1 || c.Items[0].BookID != 20 {
		t.Errorf("期望只剩BookID=20的行，实际%+v", c.Items)
	}

	// 幂等：再删一次不报错，但返回false
	removed, err = c.RemoveLine(10)
	if err != nil {
		t.Fatalf("重复删行不应报错: %v", err)
	}
	if removed {
		t.Error("期望removed=false")
	}
}

// TestCart_ConsumedIsReadOnly 已结算的购物车拒绝一切修改
func TestCart_ConsumedIsReadOnly(t *testing.T) {
	c := NewCart(1)
	_ = c.AddLine(10, "书", 100, 1)

	if err := c.MarkConsumed(); err != nil {
		t.Fatalf("结算失败: %v", err)
	}

	if err := c.AddLine(20, "书B", 200, 1); !apperrors.IsCode(err, apperrors.ErrCodeCartConsumed) {
		t.Errorf("加购应被拒绝，实际%v", err)
	}
	if err := c.UpdateQuantity(10, 2); !apperrors.IsCode(err, apperrors.ErrCodeCartConsumed) {
		t.Errorf("改量应被拒绝，实际%v", err)
	}
	if _, err := c.RemoveLine(10); !apperrors.IsCode(err, apperrors.ErrCodeCartConsumed) {
		t.Errorf("删行应被拒绝，实际%v", err)
	}

	// 重复结算也被拒绝
	if err := c.MarkConsumed(); !apperrors.IsCode(err, apperrors.ErrCodeCartConsumed) {
		t.Errorf("重复结算应被拒绝，实际%v", err)
	}
}

// TestCart_SortedItems 预留顺序按BookID升序
func TestCart_SortedItems(t *testing.T) {
	c := NewCart(1)
	_ = c.AddLine(30, "书C", 300, 1)
	_ = c.AddLine(10, "书A", 100, 1)
	_ = c.AddLine(20, "书B", 200, 1)

	sorted := c.SortedItems()
	want := []uint{10, 20, 30}
	for i, item := range sorted {
		if item.BookID != want[i] {
			t.Fatalf("第%d个期望BookID=%d，实际%d", i, want[i], item.BookID)
		}
	}

	// 原始顺序不被破坏（副本语义）
	if c.Items[0].BookID != 30 {
		t.Errorf("SortedItems不应修改原始顺序")
	}
}

// TestCart_Total 总金额按行快照价累加
func TestCart_Total(t *testing.T) {
	c := NewCart(1)

	if !c.IsEmpty() {
		t.Error("新车应为空")
	}
	if c.Total() != 0 {
		t.Errorf("空车总金额应为0，实际%d", c.Total())
	}

	_ = c.AddLine(10, "书A", 1500, 2) // 3000
	_ = c.AddLine(20, "书B", 2500, 1) // 2500

	if got := c.Total(); got != 5500 {
		t.Errorf("期望总金额5500，实际%d", got)
	}
}
