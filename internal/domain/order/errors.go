package order

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.ErrOrderNotFound

	// ErrInvalidStatusTransition 非法的状态转换
	ErrInvalidStatusTransition = apperrors.ErrInvalidOrderStatus

	// ErrNotCancellable 订单已进入物流，不能取消
	ErrNotCancellable = apperrors.New(apperrors.ErrCodeInvalidOrderStatus, "订单当前状态不允许取消")

	// ErrUnauthorized 无权操作此订单
	ErrUnauthorized = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此订单")
)
