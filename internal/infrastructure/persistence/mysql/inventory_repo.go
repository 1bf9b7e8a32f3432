package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// inventoryRepository 库存台账仓储实现（MySQL）
// 教学要点：
// 1. Reserve的核心是一条条件UPDATE：
//    UPDATE stocks SET available = available - ? WHERE book_id = ? AND available >= ?
//    命中即扣减成功，未命中即库存不足。原子判断+扣减，并发下不会超卖
// 2. 不用SELECT FOR UPDATE：预留是单行操作，条件UPDATE自带行锁，
//    锁持有时间更短，也没有"读了再写"的竞态窗口
type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存台账仓储
func NewInventoryRepository(db *gorm.DB) inventory.Repository {
	return &inventoryRepository{db: db}
}

// Create 创建库存台账
func (r *inventoryRepository) Create(ctx context.Context, s *inventory.Stock) error {
	model := &StockModel{
		BookID:    s.BookID,
		Available: s.Available,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "库存台账已存在")
		}
		return apperrors.Wrap(err, "创建库存台账失败")
	}
	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByBookID 查询某本书的台账
func (r *inventoryRepository) FindByBookID(ctx context.Context, bookID uint) (*inventory.Stock, error) {
	var model StockModel
	err := getDB(ctx, r.db).Where("book_id = ?", bookID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.ErrStockNotFound
		}
		return nil, apperrors.Wrap(err, "查询库存台账失败")
	}
	return &inventory.Stock{
		ID:        model.ID,
		BookID:    model.BookID,
		Available: model.Available,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

// Reserve 预留（扣减）库存
func (r *inventoryRepository) Reserve(ctx context.Context, bookID uint, quantity int) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	result := getDB(ctx, r.db).Model(&StockModel{}).
		Where("book_id = ? AND available >= ?", bookID, quantity).
		Update("available", gorm.Expr("available - ?", quantity))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "预留库存失败")
	}
	if result.RowsAffected == 0 {
		// 台账不存在或可售数量不够，再查一次区分原因
		var model StockModel
		err := getDB(ctx, r.db).Where("book_id = ?", bookID).First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return inventory.ErrStockNotFound
			}
			return apperrors.Wrap(err, "查询库存台账失败")
		}
		return apperrors.Newf(apperrors.ErrCodeInsufficientStock,
			"库存不足：需要%d件，仅剩%d件", quantity, model.Available)
	}
	return nil
}

// Release 释放（回补）库存
func (r *inventoryRepository) Release(ctx context.Context, bookID uint, quantity int) error {
	return r.increase(ctx, bookID, quantity, "释放库存失败")
}

// Restock 补货
func (r *inventoryRepository) Restock(ctx context.Context, bookID uint, quantity int) error {
	return r.increase(ctx, bookID, quantity, "补货失败")
}

// increase 增量回补（Release/Restock共用）
func (r *inventoryRepository) increase(ctx context.Context, bookID uint, quantity int, failMsg string) error {
	if quantity <= 0 {
		return inventory.ErrInvalidQuantity
	}

	result := getDB(ctx, r.db).Model(&StockModel{}).
		Where("book_id = ?", bookID).
		Update("available", gorm.Expr("available + ?", quantity))

	if result.Error != nil {
		return apperrors.Wrap(result.Error, failMsg)
	}
	if result.RowsAffected == 0 {
		return inventory.ErrStockNotFound
	}
	return nil
}

// inventoryLogRepository 库存日志仓储实现（MySQL）
type inventoryLogRepository struct {
	db *gorm.DB
}

// NewInventoryLogRepository 创建库存日志仓储
func NewInventoryLogRepository(db *gorm.DB) inventory.LogRepository {
	return &inventoryLogRepository{db: db}
}

// Append 追加一条变更日志
func (r *inventoryLogRepository) Append(ctx context.Context, l *inventory.Log) error {
	model := &InventoryLogModel{
		BookID:     l.BookID,
		ChangeType: string(l.ChangeType),
		Quantity:   l.Quantity,
		OrderNo:    l.OrderNo,
		OperatorID: l.OperatorID,
		Remark:     l.Remark,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存日志失败")
	}
	l.ID = model.ID
	l.CreatedAt = model.CreatedAt
	return nil
}

// ListByBookID 查询某本书的变更历史
func (r *inventoryLogRepository) ListByBookID(ctx context.Context, bookID uint, page, pageSize int) ([]*inventory.Log, int64, error) {
	var models []InventoryLogModel
	var total int64

	query := getDB(ctx, r.db).Model(&InventoryLogModel{}).Where("book_id = ?", bookID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存日志总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存日志失败")
	}

	logs := make([]*inventory.Log, len(models))
	for i := range models {
		logs[i] = &inventory.Log{
			ID:         models[i].ID,
			BookID:     models[i].BookID,
			ChangeType: inventory.ChangeType(models[i].ChangeType),
			Quantity:   models[i].Quantity,
			OrderNo:    models[i].OrderNo,
			OperatorID: models[i].OperatorID,
			Remark:     models[i].Remark,
			CreatedAt:  models[i].CreatedAt,
		}
	}
	return logs, total, nil
}
