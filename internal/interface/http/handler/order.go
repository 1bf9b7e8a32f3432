package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookmall/internal/application/order"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrderUseCase   *apporder.PlaceOrderUseCase
	cancelOrderUseCase  *apporder.CancelOrderUseCase
	advanceOrderUseCase *apporder.AdvanceOrderUseCase
	getOrderUseCase     *apporder.GetOrderUseCase
	listOrdersUseCase   *apporder.ListOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrderUseCase *apporder.PlaceOrderUseCase,
	cancelOrderUseCase *apporder.CancelOrderUseCase,
	advanceOrderUseCase *apporder.AdvanceOrderUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrderUseCase:   placeOrderUseCase,
		cancelOrderUseCase:  cancelOrderUseCase,
		advanceOrderUseCase: advanceOrderUseCase,
		getOrderUseCase:     getOrderUseCase,
		listOrdersUseCase:   listOrdersUseCase,
	}
}

// PlaceOrder 下单（结算购物车）
// @Summary      下单
// @Description  把当前敞开的购物车结算为订单，逐行预留库存，任一行失败则整单失败并释放已预留的库存
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "结算信息"
// @Success      200 {object} response.Response{data=dto.PlaceOrderResponse} "下单成功"
// @Failure      400 {object} response.Response "购物车为空/重复提交/参数错误"
// @Failure      401 {object} response.Response "未登录"
// @Failure      404 {object} response.Response "配送方式不存在或已停用"
// @Failure      500 {object} response.Response "库存不足或落库失败"
// @Router       /api/v1/orders [post]
//
// 教学说明：防超卖与防重复提交
// 本接口是整个项目的核心功能，演示两类并发问题的处理。
//
// 防超卖：条件UPDATE
// UPDATE stocks SET available = available - ? WHERE book_id = ? AND available >= ?
// 判断与扣减在一条语句里原子完成，未命中任何行即库存不足。
//
// 防部分扣减：Saga补偿
// 购物车有多行时逐行预留，第N行失败则把前N-1行等量释放，
// 外界观察不到"只扣了一半"的状态。
//
// 防重复提交：购物车open→consumed的条件UPDATE只许成功一次，
// 并发的第二个请求在落库事务里失败，触发其全部预留的释放。
//
// 测试方法：
// 1. 上架库存为10的图书，加购5本
// 2. 用同一购物车并发提交10次下单
// 3. 预期结果：恰好1次成功，其余返回"购物车已结算"，库存恰好扣5
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)

	result, err := h.placeOrderUseCase.Execute(c.Request.Context(), apporder.PlaceOrderRequest{
		UserID:           userID,
		ShippingMethodID: req.ShippingMethodID,
		Address:          req.Address,
		PaymentMethod:    req.PaymentMethod,
		Note:             req.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.PlaceOrderResponse{
		OrderID:   result.OrderID,
		OrderNo:   result.OrderNo,
		Total:     result.Total,
		TotalYuan: result.TotalYuan,
		Status:    result.Status,
		CreatedAt: result.CreatedAt,
	})
}

// CancelOrder 取消订单
// @Summary      取消订单
// @Description  取消待处理/处理中的订单，回补库存并退款；已发货订单不可取消
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "取消成功"
// @Failure      400 {object} response.Response "订单当前状态不允许取消"
// @Failure      403 {object} response.Response "不是自己的订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	userID := middleware.MustGetUserID(c)
	if err := h.cancelOrderUseCase.Execute(c.Request.Context(), userID, orderID, middleware.IsStaff(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AdvanceOrder 推进订单状态
// @Summary      推进订单状态
// @Description  店员沿 待处理→处理中→已发货→已送达 推进订单；取消走独立接口
// @Tags         订单模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.AdvanceOrderRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.AdvanceOrderResponse} "推进成功"
// @Failure      400 {object} response.Response "非法的状态转换"
// @Failure      403 {object} response.Response "非店员"
// @Router       /api/v1/orders/{id}/status [put]
func (h *OrderHandler) AdvanceOrder(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	var req dto.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.advanceOrderUseCase.Execute(c.Request.Context(), apporder.AdvanceOrderRequest{
		OrderID:      orderID,
		TargetStatus: req.TargetStatus,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.AdvanceOrderResponse{
		OrderID: result.OrderID,
		OrderNo: result.OrderNo,
		Status:  result.Status,
	})
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  查询订单详情；顾客只能看自己的订单，店员可查所有订单
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse} "查询成功"
// @Failure      403 {object} response.Response "不是自己的订单"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	userID := middleware.MustGetUserID(c)
	result, err := h.getOrderUseCase.Execute(c.Request.Context(),
		userID, orderID, middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toOrderResponse(result))
}

// ListOrders 订单列表
// @Summary      我的订单列表
// @Description  分页查询当前用户的订单，按创建时间倒序
// @Tags         订单模块
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码(默认1)"
// @Param        page_size query int false "每页数量(默认20)"
// @Success      200 {object} response.Response{data=response.PageData} "查询成功"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.OrderResponse, len(result.List))
	for i := range result.List {
		list[i] = toOrderResponse(&result.List[i])
	}
	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// toOrderResponse 应用层DTO → HTTP响应
func toOrderResponse(d *apporder.OrderDetail) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(d.Items))
	for i, item := range d.Items {
		items[i] = dto.OrderItemResponse{
			BookID:   item.BookID,
			Title:    item.Title,
			Quantity: item.Quantity,
			Price:    item.Price,
			Subtotal: item.Subtotal,
		}
	}

	resp := &dto.OrderResponse{
		ID:              d.ID,
		OrderNo:         d.OrderNo,
		Status:          d.Status,
		StatusCode:      d.StatusCode,
		Items:           items,
		ItemsTotal:      d.ItemsTotal,
		ShippingMethod:  d.ShippingMethod,
		ShippingFee:     d.ShippingFee,
		Total:           d.Total,
		TotalYuan:       d.TotalYuan,
		ShippingAddress: d.ShippingAddress,
		Note:            d.Note,
		CreatedAt:       d.CreatedAt,
	}
	if d.Payment != nil {
		resp.Payment = &dto.PaymentResponse{
			MethodName: d.Payment.MethodName,
			Amount:     d.Payment.Amount,
			Status:     d.Payment.Status,
		}
	}
	return resp
}
