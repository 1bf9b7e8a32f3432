package integration

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 教学说明：下单链路集成测试
//
// 这里验证单元测试覆盖不到的真实并发行为：
// 1. 条件UPDATE防超卖（数据库层的原子扣减）
// 2. 购物车open→consumed只许成功一次（防重复提交）
// 3. 多行预留失败时的库存回滚
//
// 需要店员Token上架图书/创建配送方式，见helper.go的说明

// TestOrderFlow 完整下单流程
func TestOrderFlow(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "order_flow")
	bookID := PublishTestBook(t, staffToken, "《下单流程测试》", 8900, 10)
	methodID := CreateTestShippingMethod(t, staffToken, 1200)

	// 加购3本
	AddToCart(t, token, bookID, 3)

	// 查看购物车
	cartResp := GetJSON(t, BaseURL+"/cart", token)
	require.Equal(t, 0, cartResp.Code)
	var cartData CartData
	require.NoError(t, json.Unmarshal(cartResp.Data, &cartData))
	assert.Equal(t, int64(26700), cartData.Total, "购物车金额应该是89.00*3")

	// 下单
	resp := PlaceOrder(t, token, methodID)
	require.Equal(t, 0, resp.Code, "下单应该成功: %s", resp.Message)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &orderData))
	assert.NotEmpty(t, orderData.OrderNo)
	assert.Equal(t, int64(27900), orderData.Total, "订单金额=商品26700+运费1200")
	t.Logf("✓ 下单成功: %s 金额%s元", orderData.OrderNo, orderData.TotalYuan)

	// 库存已扣减
	assert.Equal(t, 7, GetBookAvailable(t, bookID), "库存应该从10扣到7")

	// 购物车已结算，再次查看是新的空车
	cartResp = GetJSON(t, BaseURL+"/cart", token)
	require.Equal(t, 0, cartResp.Code)
	require.NoError(t, json.Unmarshal(cartResp.Data, &cartData))
	assert.Empty(t, cartData.Items, "结算后的购物车不应该复活")

	// 取消订单，库存回补
	cancelResp := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, orderData.OrderID), nil, token)
	require.Equal(t, 0, cancelResp.Code, "取消订单失败: %s", cancelResp.Message)
	assert.Equal(t, 10, GetBookAvailable(t, bookID), "取消后库存应该回到10")
}

// TestOrderEmptyCart 空购物车不能下单
func TestOrderEmptyCart(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "empty_cart")
	methodID := CreateTestShippingMethod(t, staffToken, 1200)

	resp := PlaceOrder(t, token, methodID)
	assert.NotEqual(t, 0, resp.Code, "空购物车应该被拒绝")
	t.Logf("✓ 空购物车正确被拒绝: %s", resp.Message)
}

// TestOrderInsufficientStock 库存不足时整单失败
func TestOrderInsufficientStock(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "oversell")
	bookA := PublishTestBook(t, staffToken, "《库存充足的书》", 5000, 10)
	bookB := PublishTestBook(t, staffToken, "《库存不足的书》", 5000, 2)
	methodID := CreateTestShippingMethod(t, staffToken, 0)

	AddToCart(t, token, bookA, 1)
	AddToCart(t, token, bookB, 5) // 超过库存2

	resp := PlaceOrder(t, token, methodID)
	assert.NotEqual(t, 0, resp.Code, "库存不足应该整单失败")

	// 整单失败后两本书的库存都不变，验证预留补偿
	assert.Equal(t, 10, GetBookAvailable(t, bookA), "失败后bookA的预留应该被释放")
	assert.Equal(t, 2, GetBookAvailable(t, bookB))
	t.Logf("✓ 库存不足整单失败且无部分扣减: %s", resp.Message)
}

// TestOrderConcurrentSubmit 同一购物车并发提交只成功一次
func TestOrderConcurrentSubmit(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "double_submit")
	bookID := PublishTestBook(t, staffToken, "《并发提交测试》", 5000, 100)
	methodID := CreateTestShippingMethod(t, staffToken, 0)

	AddToCart(t, token, bookID, 5)

	// 并发提交10次
	const workers = 10
	results := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp := PlaceOrder(t, token, methodID)
			results[idx] = resp.Code
		}(i)
	}
	wg.Wait()

	success := 0
	for _, code := range results {
		if code == 0 {
			success++
		}
	}
	assert.Equal(t, 1, success, "同一购物车并发提交应该恰好成功1次")

	// 库存恰好扣了一单的量
	assert.Equal(t, 95, GetBookAvailable(t, bookID), "库存应该只扣5件")
	t.Logf("✓ 并发提交%d次，成功%d次，库存扣减正确", workers, success)
}

// TestOrderConcurrentStock 多人抢购不超卖
func TestOrderConcurrentStock(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	// 库存10，10个用户每人买5本，最多2人成功
	bookID := PublishTestBook(t, staffToken, "《秒杀测试》", 5000, 10)
	methodID := CreateTestShippingMethod(t, staffToken, 0)

	const buyers = 10
	tokens := make([]string, buyers)
	for i := 0; i < buyers; i++ {
		_, tokens[i] = RegisterTestUser(t, fmt.Sprintf("buyer_%d", i))
		AddToCart(t, tokens[i], bookID, 5)
	}

	results := make([]int, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			resp := PlaceOrder(t, tokens[idx], methodID)
			results[idx] = resp.Code
		}(i)
	}
	wg.Wait()

	success := 0
	for _, code := range results {
		if code == 0 {
			success++
		}
	}
	assert.Equal(t, 2, success, "库存10每人买5，应该恰好2人成功")
	assert.Equal(t, 0, GetBookAvailable(t, bookID), "库存应该恰好清零，不超卖")
	t.Logf("✓ %d人抢购，成功%d人，未超卖", buyers, success)
}

// TestOrderStatusFlow 订单状态推进
func TestOrderStatusFlow(t *testing.T) {
	RequireServer(t)
	staffToken := RequireStaffToken(t)

	_, token := RegisterTestUser(t, "status_flow")
	bookID := PublishTestBook(t, staffToken, "《状态机测试》", 5000, 10)
	methodID := CreateTestShippingMethod(t, staffToken, 0)

	AddToCart(t, token, bookID, 1)
	resp := PlaceOrder(t, token, methodID)
	require.Equal(t, 0, resp.Code, "下单失败: %s", resp.Message)

	var orderData OrderData
	require.NoError(t, json.Unmarshal(resp.Data, &orderData))
	statusURL := fmt.Sprintf("%s/orders/%d/status", BaseURL, orderData.OrderID)

	t.Run("顾客不能推进状态", func(t *testing.T) {
		r := DoJSON(t, "PUT", statusURL, map[string]int{"target_status": 2}, token)
		assert.NotEqual(t, 0, r.Code, "顾客推进状态应该被拒绝")
	})

	t.Run("店员沿状态机推进", func(t *testing.T) {
		for _, target := range []int{2, 3, 4} {
			r := DoJSON(t, "PUT", statusURL, map[string]int{"target_status": target}, staffToken)
			require.Equal(t, 0, r.Code, "推进到%d失败: %s", target, r.Message)
		}
	})

	t.Run("跳步推进应失败", func(t *testing.T) {
		bookID2 := PublishTestBook(t, staffToken, "《跳步测试》", 5000, 10)
		AddToCart(t, token, bookID2, 1)
		r2 := PlaceOrder(t, token, methodID)
		require.Equal(t, 0, r2.Code)

		var od OrderData
		require.NoError(t, json.Unmarshal(r2.Data, &od))

		// 待处理直接到已发货，跳过了处理中
		r := DoJSON(t, "PUT", fmt.Sprintf("%s/orders/%d/status", BaseURL, od.OrderID),
			map[string]int{"target_status": 3}, staffToken)
		assert.NotEqual(t, 0, r.Code, "跳步推进应该被拒绝")
	})

	t.Run("已送达的订单不能取消", func(t *testing.T) {
		r := PostJSON(t, fmt.Sprintf("%s/orders/%d/cancel", BaseURL, orderData.OrderID), nil, token)
		assert.NotEqual(t, 0, r.Code, "已送达订单取消应该被拒绝")
	})
}
