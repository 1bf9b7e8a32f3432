package book

import (
	"context"
	"regexp"

	"github.com/xiebiao/bookmall/internal/domain/book"
	"github.com/xiebiao/bookmall/internal/domain/inventory"
)

// TxManager 事务边界（由mysql.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PublishBookUseCase 图书上架用例
// 设计说明：
// 1. 上架同时建库存台账：目录记录与台账必须同事务创建，
//    否则会出现"有书无账"的悬空商品
// 2. 初始库存作为一条RESTOCK日志入账，保证台账从第一件起可追溯
type PublishBookUseCase struct {
	bookRepo      book.Repository
	inventoryRepo inventory.Repository
	logRepo       inventory.LogRepository
	txManager     TxManager
}

// NewPublishBookUseCase 创建上架用例
func NewPublishBookUseCase(
	bookRepo book.Repository,
	inventoryRepo inventory.Repository,
	logRepo inventory.LogRepository,
	txManager TxManager,
) *PublishBookUseCase {
	return &PublishBookUseCase{
		bookRepo:      bookRepo,
		inventoryRepo: inventoryRepo,
		logRepo:       logRepo,
		txManager:     txManager,
	}
}

// isbnPattern ISBN-10/13格式（允许连字符）
var isbnPattern = regexp.MustCompile(`^(?:\d[\d\-]{8,15}[\dXx])$`)

// PublishBookRequest 上架请求DTO
type PublishBookRequest struct {
	ISBN         string // ISBN号
	Title        string // 书名
	Author       string // 作者
	Publisher    string // 出版社
	Price        int64  // 价格(分)
	InitialStock int    // 初始库存
	CoverURL     string // 封面图URL
	Description  string // 图书描述
	PublisherID  uint   // 发布者用户ID(从认证中间件获取)
}

// PublishBookResponse 上架响应DTO
type PublishBookResponse struct {
	ID          uint   `json:"id"`
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Price       int64  `json:"price"` // 价格(分)
	Available   int    `json:"available"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	PublisherID uint   `json:"publisher_id"`
	CreatedAt   string `json:"created_at"`
}

// Execute 执行上架用例
func (uc *PublishBookUseCase) Execute(ctx context.Context, req PublishBookRequest) (*PublishBookResponse, error) {
	// 1. 业务规则校验
	if !isbnPattern.MatchString(req.ISBN) {
		return nil, book.ErrInvalidISBN
	}
	if req.Price <= 0 {
		return nil, book.ErrInvalidPrice
	}
	if req.InitialStock < 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	// 2. 同事务创建目录记录、库存台账与初始入账日志
	b := book.NewBook(req.ISBN, req.Title, req.Author, req.Publisher,
		req.Price, req.CoverURL, req.Description, req.PublisherID)

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if err := uc.bookRepo.Create(txCtx, b); err != nil {
			return err
		}

		stock := inventory.NewStock(b.ID, req.InitialStock)
		if err := uc.inventoryRepo.Create(txCtx, stock); err != nil {
			return err
		}

		if req.InitialStock > 0 {
			log := inventory.NewRestockLog(b.ID, req.InitialStock, req.PublisherID, "上架初始库存")
			if err := uc.logRepo.Append(txCtx, log); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &PublishBookResponse{
		ID:          b.ID,
		ISBN:        b.ISBN,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		Price:       b.Price,
		Available:   req.InitialStock,
		CoverURL:    b.CoverURL,
		Description: b.Description,
		PublisherID: b.PublisherID,
		CreatedAt:   b.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
