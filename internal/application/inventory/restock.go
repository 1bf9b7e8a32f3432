package inventory

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/inventory"
)

// TxManager 事务边界（由mysql.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// RestockUseCase 补货用例（店员操作）
// 设计说明：台账增量与RESTOCK日志必须同事务写入，
// 否则对账时会出现"账实不符"
type RestockUseCase struct {
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
	txManager     TxManager
}

// NewRestockUseCase 创建补货用例
func NewRestockUseCase(
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager TxManager,
) *RestockUseCase {
	return &RestockUseCase{
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		txManager:     txManager,
	}
}

// RestockRequest 补货请求DTO
type RestockRequest struct {
	BookID     uint   // 图书ID
	Quantity   int    // 补货数量
	OperatorID uint   // 操作店员ID(从认证中间件获取)
	Remark     string // 备注
}

// RestockResponse 补货响应DTO
type RestockResponse struct {
	BookID    uint `json:"book_id"`
	Available int  `json:"available"` // 补货后可售数量
}

// Execute 执行补货
func (uc *RestockUseCase) Execute(ctx context.Context, req RestockRequest) (*RestockResponse, error) {
	if req.Quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.inventoryRepo.Restock(txCtx, req.BookID, req.Quantity); err != nil {
			return err
		}
		log := inventory.NewRestockLog(req.BookID, req.Quantity, req.OperatorID, req.Remark)
		return uc.logRepo.Append(txCtx, log)
	})
	if err != nil {
		return nil, err
	}

	stock, err := uc.inventoryRepo.FindByBookID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	return &RestockResponse{
		BookID:    stock.BookID,
		Available: stock.Available,
	}, nil
}

// ListLogsUseCase 库存变更历史查询用例（店员排查、对账用）
type ListLogsUseCase struct {
	logRepo inventory.LogRepository
}

// NewListLogsUseCase 创建历史查询用例
func NewListLogsUseCase(logRepo inventory.LogRepository) *ListLogsUseCase {
	return &ListLogsUseCase{logRepo: logRepo}
}

// LogItem 日志项DTO
type LogItem struct {
	ID         uint   `json:"id"`
	BookID     uint   `json:"book_id"`
	ChangeType string `json:"change_type"`
	Quantity   int    `json:"quantity"`
	OrderNo    string `json:"order_no,omitempty"`
	OperatorID uint   `json:"operator_id"`
	Remark     string `json:"remark,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// ListLogsResponse 历史查询响应DTO
type ListLogsResponse struct {
	List     []LogItem `json:"list"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// Execute 执行历史查询
func (uc *ListLogsUseCase) Execute(ctx context.Context, bookID uint, page, pageSize int) (*ListLogsResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	logs, total, err := uc.logRepo.ListByBookID(ctx, bookID, page, pageSize)
	if err != nil {
		return nil, err
	}

	list := make([]LogItem, len(logs))
	for i, l := range logs {
		list[i] = LogItem{
			ID:         l.ID,
			BookID:     l.BookID,
			ChangeType: string(l.ChangeType),
			Quantity:   l.Quantity,
			OrderNo:    l.OrderNo,
			OperatorID: l.OperatorID,
			Remark:     l.Remark,
			CreatedAt:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return &ListLogsResponse{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
