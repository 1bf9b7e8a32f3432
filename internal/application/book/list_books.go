package book

import (
	"context"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
)

// ListBooksUseCase 图书列表查询用例
// 列表不带库存数量（减少查询），详情页单独查台账
type ListBooksUseCase struct {
	bookRepo book.Repository
}

// NewListBooksUseCase 创建列表查询用例
func NewListBooksUseCase(bookRepo book.Repository) *ListBooksUseCase {
	return &ListBooksUseCase{
		bookRepo: bookRepo,
	}
}

// ListBooksRequest 列表查询请求DTO
type ListBooksRequest struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 搜索关键词(匹配书名、作者)
}

// BookListItem 列表项DTO(不含description)
type BookListItem struct {
	ID        uint   `json:"id"`
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Price     int64  `json:"price"` // 价格(分)
	CoverURL  string `json:"cover_url"`
	CreatedAt string `json:"created_at"`
}

// ListBooksResponse 列表查询响应DTO
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// Execute 执行列表查询用例
func (uc *ListBooksUseCase) Execute(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	// 参数默认值与范围限制
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	books, total, err := uc.bookRepo.List(ctx, req.Keyword, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]BookListItem, len(books))
	for i, b := range books {
		list[i] = BookListItem{
			ID:        b.ID,
			ISBN:      b.ISBN,
			Title:     b.Title,
			Author:    b.Author,
			Publisher: b.Publisher,
			Price:     b.Price,
			CoverURL:  b.CoverURL,
			CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListBooksResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetBookUseCase 图书详情查询用例（带可售数量）
type GetBookUseCase struct {
	bookRepo      book.Repository
	inventoryRepo inventory.Repository
}

// NewGetBookUseCase 创建详情查询用例
func NewGetBookUseCase(bookRepo book.Repository, inventoryRepo inventory.Repository) *GetBookUseCase {
	return &GetBookUseCase{
		bookRepo:      bookRepo,
		inventoryRepo: inventoryRepo,
	}
}

// BookDetail 详情DTO
type BookDetail struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Price       int64  `json:"price"`
	Available   int    `json:"available"` // 可售数量（来自库存台账）
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行详情查询
func (uc *GetBookUseCase) Execute(ctx context.Context, bookID uint) (*BookDetail, error) {
	b, err := uc.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	// 台账缺失按0库存展示，不阻断详情页
	available := 0
	stock, err := uc.inventoryRepo.FindByBookID(ctx, bookID)
	if err == nil {
		available = stock.Available
	} else if !apperrors.IsCode(err, apperrors.ErrCodeNotFound) {
		return nil, err
	}

	return &BookDetail{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		Available:   available,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
