package book

import (
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.ErrISBNDuplicate

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidISBN ISBN格式不正确
	ErrInvalidISBN = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")

	// ErrUnauthorized 无权操作此图书
	ErrUnauthorized = apperrors.New(apperrors.ErrCodeForbidden, "无权操作此图书")
)
