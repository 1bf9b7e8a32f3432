package book

import (
	"time"
)

// Book 图书实体（聚合根）
// DDD设计说明：
// 1. Book是商品目录聚合的根实体，只负责图书的"描述性"属性
// 2. 价格使用int64存储"分"为单位（避免浮点数精度问题）
// 3. 库存不在Book上：库存由inventory聚合（台账）独立管理，
//    目录关心"卖什么、卖多少钱"，台账关心"还剩多少"
// 4. ISBN作为业务唯一标识（数据库层保证唯一性）
type Book struct {
	ID          uint
	ISBN        string // ISBN号（国际标准书号）
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Price       int64  // 价格（单位:分，1元=100分）
	CoverURL    string // 封面图片URL
	Description string // 图书描述
	PublisherID uint   // 发布者用户ID（关联User表）
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书（工厂方法）
// isbn需调用方先验证格式；price必须>0由调用方保证
func NewBook(isbn, title, author, publisher string, price int64, coverURL, description string, publisherID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		CoverURL:    coverURL,
		Description: description,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdatePrice 更新价格（领域行为）
// 业务规则：价格必须>0
// 注意：改价不影响历史订单和已加入购物车的行（行上保存的是加入时的快照价）
func (b *Book) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	b.Price = newPrice
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息（空字符串表示不修改）
func (b *Book) UpdateInfo(title, author, publisher, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}

// IsOwnedBy 检查图书是否由指定用户发布
func (b *Book) IsOwnedBy(userID uint) bool {
	return b.PublisherID == userID
}
