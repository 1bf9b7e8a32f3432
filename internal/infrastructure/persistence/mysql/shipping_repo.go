package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/shipping"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// shippingRepository 配送方式仓储实现（MySQL）
type shippingRepository struct {
	db *gorm.DB
}

// NewShippingRepository 创建配送方式仓储
func NewShippingRepository(db *gorm.DB) shipping.Repository {
	return &shippingRepository{db: db}
}

// Create 创建配送方式
func (r *shippingRepository) Create(ctx context.Context, m *shipping.Method) error {
	model := &ShippingMethodModel{
		Name:          m.Name,
		Fee:           m.Fee,
		EstimatedDays: m.EstimatedDays,
		Active:        m.Active,
	}
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建配送方式失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// FindActiveByID 查找可选的配送方式
// 已下架与不存在同样返回ErrMethodNotFound：下单校验不关心区别
func (r *shippingRepository) FindActiveByID(ctx context.Context, id uint) (*shipping.Method, error) {
	var model ShippingMethodModel
	err := getDB(ctx, r.db).Where("id = ? AND active = ?", id, true).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrMethodNotFound
		}
		return nil, apperrors.Wrap(err, "查询配送方式失败")
	}
	return toShippingEntity(&model), nil
}

// ListActive 列出所有可选的配送方式
func (r *shippingRepository) ListActive(ctx context.Context) ([]*shipping.Method, error) {
	var models []ShippingMethodModel
	err := getDB(ctx, r.db).Where("active = ?", true).Order("fee ASC").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询配送方式列表失败")
	}

	methods := make([]*shipping.Method, len(models))
	for i := range models {
		methods[i] = toShippingEntity(&models[i])
	}
	return methods, nil
}

// Update 更新配送方式
func (r *shippingRepository) Update(ctx context.Context, m *shipping.Method) error {
	model := &ShippingMethodModel{
		ID:            m.ID,
		Name:          m.Name,
		Fee:           m.Fee,
		EstimatedDays: m.EstimatedDays,
		Active:        m.Active,
	}
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新配送方式失败")
	}
	m.UpdatedAt = model.UpdatedAt
	return nil
}

// toShippingEntity GORM模型 → 领域实体
func toShippingEntity(model *ShippingMethodModel) *shipping.Method {
	return &shipping.Method{
		ID:            model.ID,
		Name:          model.Name,
		Fee:           model.Fee,
		EstimatedDays: model.EstimatedDays,
		Active:        model.Active,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}
