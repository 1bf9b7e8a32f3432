package cart

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = apperrors.ErrCartNotFound

	// ErrCartConsumed 购物车已结算（重复提交/对只读购物车做修改）
	ErrCartConsumed = apperrors.ErrCartConsumed

	// ErrCartEmpty 购物车为空（空车不能结算）
	ErrCartEmpty = apperrors.ErrCartEmpty

	// ErrLineNotFound 购物车中不存在该图书
	ErrLineNotFound = apperrors.New(apperrors.ErrCodeNotFound, "购物车中不存在该图书")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)
