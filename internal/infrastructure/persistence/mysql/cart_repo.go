package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/cart"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// cartRepository 购物车仓储实现（MySQL）
// 教学要点：
// 1. "一人一辆敞开的车"靠(user_id, open_flag)唯一索引兜底，
//    并发GetOrCreateOpen时输掉INSERT竞争的一方重查即可
// 2. Consume是整个下单链路防重复提交的锚点：
//    UPDATE carts SET status=2, open_flag=NULL WHERE id=? AND status=1
//    RowsAffected=0说明车已被别的请求结算
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepository{db: db}
}

// GetOrCreateOpen 获取用户当前敞开的购物车，不存在则创建
func (r *cartRepository) GetOrCreateOpen(ctx context.Context, userID uint) (*cart.Cart, error) {
	c, err := r.FindOpenByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeCartNotFound) {
		return nil, err
	}

	// 没有敞开的车，建一辆
	open := int8(1)
	model := &CartModel{
		UserID:   userID,
		Status:   int(cart.CartStatusOpen),
		OpenFlag: &open,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		// 并发创建：另一个请求先建成了，重查拿现成的
		if isDuplicateError(err) {
			return r.FindOpenByUserID(ctx, userID)
		}
		return nil, apperrors.Wrap(err, "创建购物车失败")
	}

	return toCartEntity(model), nil
}

// FindByID 根据ID查找购物车（含行）
func (r *cartRepository) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	var model CartModel
	err := getDB(ctx, r.db).Preload("Items").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// FindOpenByUserID 查找用户敞开的购物车
func (r *cartRepository) FindOpenByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	var model CartModel
	err := getDB(ctx, r.db).Preload("Items").
		Where("user_id = ? AND status = ?", userID, int(cart.CartStatusOpen)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, cart.ErrCartNotFound
		}
		return nil, apperrors.Wrap(err, "查询购物车失败")
	}
	return toCartEntity(&model), nil
}

// SaveItems 持久化购物车行的变更
// 教学要点：全量对账式保存。先删掉内存中已不存在的行，
// 再逐行Upsert（行上有(cart_id, book_id)唯一索引）
func (r *cartRepository) SaveItems(ctx context.Context, c *cart.Cart) error {
	db := getDB(ctx, r.db)

	keepIDs := make([]uint, 0, len(c.Items))
	for idx := range c.Items {
		keepIDs = append(keepIDs, c.Items[idx].BookID)
	}

	// 删除已移除的行
	del := db.Where("cart_id = ?", c.ID)
	if len(keepIDs) > 0 {
		del = del.Where("book_id NOT IN ?", keepIDs)
	}
	if err := del.Delete(&CartItemModel{}).Error; err != nil {
		return apperrors.Wrap(err, "删除购物车行失败")
	}

	// 逐行保存（已有行更新数量，新行插入）
	for idx := range c.Items {
		item := &c.Items[idx]
		model := CartItemModel{
			ID:        item.ID,
			CartID:    c.ID,
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
		if model.ID == 0 {
			if err := db.Create(&model).Error; err != nil {
				return apperrors.Wrap(err, "保存购物车行失败")
			}
			item.ID = model.ID
		} else {
			err := db.Model(&CartItemModel{}).
				Where("id = ?", model.ID).
				Update("quantity", model.Quantity).Error
			if err != nil {
				return apperrors.Wrap(err, "更新购物车行失败")
			}
		}
	}

	// 更新购物车时间戳
	if err := db.Model(&CartModel{}).Where("id = ?", c.ID).
		Update("updated_at", c.UpdatedAt).Error; err != nil {
		return apperrors.Wrap(err, "更新购物车失败")
	}
	return nil
}

// Consume 将购物车从open置为consumed（条件UPDATE，只许成功一次）
func (r *cartRepository) Consume(ctx context.Context, cartID uint) error {
	result := getDB(ctx, r.db).Model(&CartModel{}).
		Where("id = ? AND status = ?", cartID, int(cart.CartStatusOpen)).
		Updates(map[string]interface{}{
			"status":    int(cart.CartStatusConsumed),
			"open_flag": nil,
		})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "结算购物车失败")
	}
	if result.RowsAffected == 0 {
		// 车不存在或已被结算；对下单链路而言都按重复提交处理
		return cart.ErrCartConsumed
	}
	return nil
}

// HasConsumedByUserID 用户是否存在已结算的购物车
func (r *cartRepository) HasConsumedByUserID(ctx context.Context, userID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&CartModel{}).
		Where("user_id = ? AND status = ?", userID, int(cart.CartStatusConsumed)).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询购物车失败")
	}
	return count > 0, nil
}

// toCartEntity GORM模型 → 领域实体
func toCartEntity(model *CartModel) *cart.Cart {
	items := make([]cart.CartItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = cart.CartItem{
			ID:        item.ID,
			CartID:    item.CartID,
			BookID:    item.BookID,
			Title:     item.Title,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}
	return &cart.Cart{
		ID:        model.ID,
		UserID:    model.UserID,
		Status:    cart.CartStatus(model.Status),
		Items:     items,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
