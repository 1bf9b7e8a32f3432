package handler

import (
	"github.com/gin-gonic/gin"

	appshipping "github.com/xiebiao/bookmall/internal/application/shipping"
	"github.com/xiebiao/bookmall/internal/interface/http/dto"
	"github.com/xiebiao/bookmall/pkg/response"
)

// ShippingHandler 配送方式HTTP处理器
type ShippingHandler struct {
	listMethodsUseCase      *appshipping.ListMethodsUseCase
	createMethodUseCase     *appshipping.CreateMethodUseCase
	deactivateMethodUseCase *appshipping.DeactivateMethodUseCase
}

// NewShippingHandler 创建配送处理器
func NewShippingHandler(
	listMethodsUseCase *appshipping.ListMethodsUseCase,
	createMethodUseCase *appshipping.CreateMethodUseCase,
	deactivateMethodUseCase *appshipping.DeactivateMethodUseCase,
) *ShippingHandler {
	return &ShippingHandler{
		listMethodsUseCase:      listMethodsUseCase,
		createMethodUseCase:     createMethodUseCase,
		deactivateMethodUseCase: deactivateMethodUseCase,
	}
}

// ListMethods 可选配送方式列表
// @Summary      配送方式列表
// @Description  结算页展示所有可选的配送方式
// @Tags         配送模块
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.ShippingMethodResponse} "查询成功"
// @Router       /api/v1/shipping-methods [get]
func (h *ShippingHandler) ListMethods(c *gin.Context) {
	result, err := h.listMethodsUseCase.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.ShippingMethodResponse, len(result))
	for i, m := range result {
		list[i] = dto.ShippingMethodResponse{
			ID:            m.ID,
			Name:          m.Name,
			Fee:           m.Fee,
			FeeYuan:       dto.FormatPriceYuan(m.Fee),
			EstimatedDays: m.EstimatedDays,
		}
	}
	response.Success(c, list)
}

// CreateMethod 创建配送方式
// @Summary      创建配送方式
// @Description  店员新增配送方式
// @Tags         配送模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateShippingMethodRequest true "配送方式信息"
// @Success      200 {object} response.Response{data=dto.ShippingMethodResponse} "创建成功"
// @Failure      403 {object} response.Response "非店员"
// @Router       /api/v1/shipping-methods [post]
func (h *ShippingHandler) CreateMethod(c *gin.Context) {
	var req dto.CreateShippingMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.createMethodUseCase.Execute(c.Request.Context(), appshipping.CreateMethodRequest{
		Name:          req.Name,
		Fee:           req.Fee,
		EstimatedDays: req.EstimatedDays,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.ShippingMethodResponse{
		ID:            result.ID,
		Name:          result.Name,
		Fee:           result.Fee,
		FeeYuan:       dto.FormatPriceYuan(result.Fee),
		EstimatedDays: result.EstimatedDays,
	})
}

// DeactivateMethod 下架配送方式
// @Summary      下架配送方式
// @Description  店员下架配送方式；历史订单上保存的是快照，不受影响
// @Tags         配送模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "配送方式ID"
// @Success      200 {object} response.Response "下架成功"
// @Failure      403 {object} response.Response "非店员"
// @Failure      404 {object} response.Response "配送方式不存在"
// @Router       /api/v1/shipping-methods/{id} [delete]
func (h *ShippingHandler) DeactivateMethod(c *gin.Context) {
	methodID, err := parseUintParam(c, "id")
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的配送方式ID")
		return
	}

	if err := h.deactivateMethodUseCase.Execute(c.Request.Context(), methodID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
