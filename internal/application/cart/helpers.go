package cart

import (
	"fmt"

	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}

// cartNotFound 是否购物车不存在错误
func cartNotFound(err error) bool {
	return apperrors.IsCode(err, apperrors.ErrCodeCartNotFound)
}
