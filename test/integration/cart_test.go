package integration

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：购物车模块集成测试
// 重点验证行快照语义：加购后改价/改名不影响已有行

func viewCart(t *testing.T, token string) *CartData {
	t.Helper()
	resp := GetJSON(t, BaseURL+"/cart", token)
	require.Equal(t, 0, resp.Code, "查看购物车失败: %s", resp.Message)
	var data CartData
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return &data
}

func TestCartBasics(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "cart_basic")
	bookID := PublishTestBook(t, staffToken, "《购物车测试》", 5900, 10)

	t.Run("初始是空车", func(t *testing.T) {
		data := viewCart(t, token)
		assert.Empty(t, data.Items)
		assert.Zero(t, data.Total)
	})

	t.Run("重复加购合并数量", func(t *testing.T) {
		AddToCart(t, token, bookID, 2)
		AddToCart(t, token, bookID, 3)

		data := viewCart(t, token)
		require.Len(t, data.Items, 1, "同一本书应该合并成一行")
		assert.Equal(t, 5, data.Items[0].Quantity)
		assert.Equal(t, int64(29500), data.Total)
	})

	t.Run("覆盖式改量", func(t *testing.T) {
		resp := DoJSON(t, "PUT", fmt.Sprintf("%s/cart/items/%d", BaseURL, bookID),
			map[string]int{"quantity": 2}, token)
		require.Equal(t, 0, resp.Code, "改量失败: %s", resp.Message)

		data := viewCart(t, token)
		assert.Equal(t, 2, data.Items[0].Quantity, "改量是覆盖不是累加")
	})

	t.Run("删行", func(t *testing.T) {
		resp := DoJSON(t, "DELETE", fmt.Sprintf("%s/cart/items/%d", BaseURL, bookID), nil, token)
		require.Equal(t, 0, resp.Code, "删行失败: %s", resp.Message)

		data := viewCart(t, token)
		assert.Empty(t, data.Items)
	})

	t.Run("加购不存在的图书应失败", func(t *testing.T) {
		resp := PostJSON(t, BaseURL+"/cart/items",
			map[string]interface{}{"book_id": 99999999, "quantity": 1}, token)
		assert.NotEqual(t, 0, resp.Code)
	})
}

// TestCartPriceSnapshot 改价不影响已加购的行
func TestCartPriceSnapshot(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "price_snapshot")
	bookID := PublishTestBook(t, staffToken, "《快照测试》", 5000, 10)

	// 以5000分的价格加购
	AddToCart(t, token, bookID, 2)

	// 店员改价到9900分
	resp := DoJSON(t, "PUT", fmt.Sprintf("%s/books/%d", BaseURL, bookID),
		map[string]interface{}{"price": 9900}, staffToken)
	require.Equal(t, 0, resp.Code, "改价失败: %s", resp.Message)

	// 购物车里仍是加入时的快照价
	data := viewCart(t, token)
	require.Len(t, data.Items, 1)
	assert.Equal(t, int64(10000), data.Total, "购物车金额应该用加入时的5000分快照价")

	// 再次加购同一本书：合并数量，仍保留首次快照价
	AddToCart(t, token, bookID, 1)
	data = viewCart(t, token)
	assert.Equal(t, 3, data.Items[0].Quantity)
	assert.Equal(t, int64(15000), data.Total, "合并加购保留首次加入的快照价")

	t.Logf("✓ 改价后购物车金额不变: %s元", data.TotalYuan)
}
