package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookmall/internal/application/cart"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/internal/interface/http/middleware"
	"github.com/xiebiao/bookmall/pkg/response"
)

// CartHandler 购物车HTTP处理器
// 购物车永远属于当前登录用户，URL里不出现cart_id：
// 服务端按用户找敞开的车，客户端无法操作他人的购物车
type CartHandler struct {
	addItemUseCase    *appcart.AddItemUseCase
	updateItemUseCase *appcart.UpdateItemUseCase
	removeItemUseCase *appcart.RemoveItemUseCase
	viewCartUseCase   *appcart.ViewCartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	addItemUseCase *appcart.AddItemUseCase,
	updateItemUseCase *appcart.UpdateItemUseCase,
	removeItemUseCase *appcart.RemoveItemUseCase,
	viewCartUseCase *appcart.ViewCartUseCase,
) *CartHandler {
	return &CartHandler{
		addItemUseCase:    addItemUseCase,
		updateItemUseCase: updateItemUseCase,
		removeItemUseCase: removeItemUseCase,
		viewCartUseCase:   viewCartUseCase,
	}
}

// ViewCart 查看购物车
// @Summary      查看购物车
// @Description  查看当前敞开的购物车；没有时返回空车视图
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.CartResponse} "查询成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/cart [get]
func (h *CartHandler) ViewCart(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	result, err := h.viewCartUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toCartResponse(result))
}

// AddItem 加购
// @Summary      加入购物车
// @Description  把图书加入购物车，重复加购合并数量；价格取加入时的快照
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AddCartItemRequest true "加购信息"
// @Success      200 {object} response.Response{data=dto.CartResponse} "加购成功"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.addItemUseCase.Execute(c.Request.Context(), appcart.AddItemRequest{
		UserID:   middleware.MustGetUserID(c),
		BookID:   req.BookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toCartResponse(result))
}

// UpdateItem 改量
// @Summary      修改购物车行数量
// @Description  覆盖式修改某本书的数量；改成0请用删除接口
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response{data=dto.CartResponse} "修改成功"
// @Failure      404 {object} response.Response "购物车中不存在该图书"
// @Router       /api/v1/cart/items/{book_id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	bookID, err := parseUintParam(c, "book_id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateItemUseCase.Execute(c.Request.Context(), appcart.UpdateItemRequest{
		UserID:   middleware.MustGetUserID(c),
		BookID:   bookID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toCartResponse(result))
}

// RemoveItem 删行
// @Summary      从购物车删除图书
// @Description  幂等删除：该图书不在购物车里也返回成功
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Param        book_id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.CartResponse} "删除成功"
// @Router       /api/v1/cart/items/{book_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	bookID, err := parseUintParam(c, "book_id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的图书ID")
		return
	}

	result, err := h.removeItemUseCase.Execute(c.Request.Context(),
		middleware.MustGetUserID(c), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, toCartResponse(result))
}

// toCartResponse 应用层视图 → HTTP响应
func toCartResponse(v *appcart.CartView) *dto.CartResponse {
	items := make([]dto.CartItemResponse, len(v.Items))
	for i, item := range v.Items {
		items[i] = dto.CartItemResponse{
			BookID:       item.BookID,
			Title:        item.Title,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal,
			SubtotalYuan: item.SubtotalYuan,
		}
	}
	return &dto.CartResponse{
		ID:        v.ID,
		Status:    v.Status,
		Items:     items,
		Total:     v.Total,
		TotalYuan: v.TotalYuan,
	}
}
