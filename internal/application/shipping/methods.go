package shipping

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/shipping"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// ListMethodsUseCase 配送方式列表查询用例（结算页展示）
type ListMethodsUseCase struct {
	shippingRepo shipping.Repository
}

// NewListMethodsUseCase 创建列表查询用例
func NewListMethodsUseCase(shippingRepo shipping.Repository) *ListMethodsUseCase {
	return &ListMethodsUseCase{shippingRepo: shippingRepo}
}

// MethodView 配送方式DTO
type MethodView struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Fee           int64  `json:"fee"`
	EstimatedDays int    `json:"estimated_days"`
}

// Execute 执行列表查询
func (uc *ListMethodsUseCase) Execute(ctx context.Context) ([]MethodView, error) {
	methods, err := uc.shippingRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]MethodView, len(methods))
	for i, m := range methods {
		list[i] = MethodView{
			ID:            m.ID,
			Name:          m.Name,
			Fee:           m.Fee,
			EstimatedDays: m.EstimatedDays,
		}
	}
	return list, nil
}

// CreateMethodUseCase 创建配送方式用例（店员操作）
type CreateMethodUseCase struct {
	shippingRepo shipping.Repository
}

// NewCreateMethodUseCase 创建配送方式创建用例
func NewCreateMethodUseCase(shippingRepo shipping.Repository) *CreateMethodUseCase {
	return &CreateMethodUseCase{shippingRepo: shippingRepo}
}

// CreateMethodRequest 创建请求DTO
type CreateMethodRequest struct {
	Name          string
	Fee           int64 // 运费(分)，0表示包邮
	EstimatedDays int
}

// Execute 执行创建
func (uc *CreateMethodUseCase) Execute(ctx context.Context, req CreateMethodRequest) (*MethodView, error) {
	if req.Name == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "配送方式名称不能为空")
	}
	if req.Fee < 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "运费不能为负数")
	}
	if req.EstimatedDays <= 0 {
		return nil, apperrors.New(apperrors.ErrCodeInvalidParams, "预计送达天数必须大于0")
	}

	m := shipping.NewMethod(req.Name, req.Fee, req.EstimatedDays)
	if err := uc.shippingRepo.Create(ctx, m); err != nil {
		return nil, err
	}

	return &MethodView{
		ID:            m.ID,
		Name:          m.Name,
		Fee:           m.Fee,
		EstimatedDays: m.EstimatedDays,
	}, nil
}

// DeactivateMethodUseCase 下架配送方式用例（店员操作）
// 下架不影响历史订单（订单上保存的是名称与运费快照）
type DeactivateMethodUseCase struct {
	shippingRepo shipping.Repository
}

// NewDeactivateMethodUseCase 创建下架用例
func NewDeactivateMethodUseCase(shippingRepo shipping.Repository) *DeactivateMethodUseCase {
	return &DeactivateMethodUseCase{shippingRepo: shippingRepo}
}

// Execute 执行下架
func (uc *DeactivateMethodUseCase) Execute(ctx context.Context, methodID uint) error {
	m, err := uc.shippingRepo.FindActiveByID(ctx, methodID)
	if err != nil {
		return err
	}
	m.Deactivate()
	return uc.shippingRepo.Update(ctx, m)
}
