package inventory

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrInsufficientStock 库存不足（条件UPDATE未命中）
	ErrInsufficientStock = apperrors.ErrInsufficientStock

	// ErrStockNotFound 库存台账不存在（图书未建台账）
	ErrStockNotFound = apperrors.New(apperrors.ErrCodeNotFound, "库存台账不存在")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
)
