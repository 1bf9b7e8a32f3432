package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookmall/internal/domain/book"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// bookRepository 图书仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/book/repository.go定义的接口
// 2. 图书表不含库存字段，库存相关操作在inventory_repo.go
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		PublisherID: b.PublisherID,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrISBNDuplicate
		}
		return apperrors.Wrap(err, "创建图书失败")
	}

	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByISBN 根据ISBN查找图书
func (r *bookRepository) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	var model BookModel
	if err := getDB(ctx, r.db).Where("isbn = ?", isbn).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "查询图书失败")
	}
	return toBookEntity(&model), nil
}

// FindByIDs 批量查询图书
// 教学要点：一次IN查询代替循环单查，避免N+1
func (r *bookRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*book.Book, error) {
	if len(ids) == 0 {
		return map[uint]*book.Book{}, nil
	}

	var models []BookModel
	if err := getDB(ctx, r.db).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "批量查询图书失败")
	}

	result := make(map[uint]*book.Book, len(models))
	for i := range models {
		result[models[i].ID] = toBookEntity(&models[i])
	}
	return result, nil
}

// Update 更新图书信息
func (r *bookRepository) Update(ctx context.Context, b *book.Book) error {
	model := &BookModel{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		PublisherID: b.PublisherID,
	}
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新图书失败")
	}
	b.UpdatedAt = model.UpdatedAt
	return nil
}

// List 分页查询图书列表
func (r *bookRepository) List(ctx context.Context, keyword string, page, pageSize int) ([]*book.Book, int64, error) {
	var models []BookModel
	var total int64

	query := getDB(ctx, r.db).Model(&BookModel{})

	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询图书列表失败")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, total, nil
}

// toBookEntity GORM模型 → 领域实体
func toBookEntity(model *BookModel) *book.Book {
	return &book.Book{
		ID:          model.ID,
		ISBN:        model.ISBN,
		Title:       model.Title,
		Author:      model.Author,
		Publisher:   model.Publisher,
		Price:       model.Price,
		CoverURL:    model.CoverURL,
		Description: model.Description,
		PublisherID: model.PublisherID,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
