package shipping

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 配送领域错误定义
var (
	// ErrMethodNotFound 配送方式不存在或已下架
	ErrMethodNotFound = apperrors.ErrShippingNotFound
)
