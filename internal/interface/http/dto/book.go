package dto

import "fmt"

// PublishBookRequest HTTP上架请求
// 价格与库存分开：价格属于目录，库存走台账
type PublishBookRequest struct {
	ISBN         string `json:"isbn" binding:"required" example:"9787115428028"`
	Title        string `json:"title" binding:"required,max=200" example:"Go语言实战"`
	Author       string `json:"author" binding:"required,max=100" example:"威廉·肯尼迪"`
	Publisher    string `json:"publisher" binding:"required,max=100" example:"人民邮电出版社"`
	Price        int64  `json:"price" binding:"required,min=1,max=999999" example:"5900"` // 价格(分),59.00元
	InitialStock int    `json:"initial_stock" binding:"min=0" example:"100"`
	CoverURL     string `json:"cover_url" binding:"omitempty,url,max=500" example:"https://example.com/cover.jpg"`
	Description  string `json:"description" binding:"max=5000" example:"这是一本关于Go语言的实战书籍"`
}

// BookResponse HTTP图书详情响应
type BookResponse struct {
	ID          uint   `json:"id" example:"1"`
	ISBN        string `json:"isbn" example:"9787115428028"`
	Title       string `json:"title" example:"Go语言实战"`
	Author      string `json:"author" example:"威廉·肯尼迪"`
	Publisher   string `json:"publisher" example:"人民邮电出版社"`
	Price       int64  `json:"price" example:"5900"`       // 价格(分)
	PriceYuan   string `json:"price_yuan" example:"59.00"` // 价格(元),方便前端显示
	Available   int    `json:"available" example:"100"`    // 可售数量（来自库存台账）
	CoverURL    string `json:"cover_url" example:"https://example.com/cover.jpg"`
	Description string `json:"description" example:"这是一本关于Go语言的实战书籍"`
	CreatedAt   string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// BookListItem HTTP图书列表项
// 列表查询时不返回Description字段(减少数据传输量)
type BookListItem struct {
	ID        uint   `json:"id" example:"1"`
	ISBN      string `json:"isbn" example:"9787115428028"`
	Title     string `json:"title" example:"Go语言实战"`
	Author    string `json:"author" example:"威廉·肯尼迪"`
	Publisher string `json:"publisher" example:"人民邮电出版社"`
	Price     int64  `json:"price" example:"5900"`
	PriceYuan string `json:"price_yuan" example:"59.00"`
	CoverURL  string `json:"cover_url" example:"https://example.com/cover.jpg"`
	CreatedAt string `json:"created_at" example:"2024-01-15 10:30:00"`
}

// ListBooksRequest HTTP图书列表请求
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
}

// ListBooksResponse HTTP图书列表响应
type ListBooksResponse struct {
	List       []BookListItem `json:"list"`
	Total      int64          `json:"total" example:"100"`
	Page       int            `json:"page" example:"1"`
	PageSize   int            `json:"page_size" example:"20"`
	TotalPages int            `json:"total_pages" example:"5"`
}

// UpdateBookRequest HTTP图书修改请求（店员操作，缺省字段不修改）
type UpdateBookRequest struct {
	Title       string `json:"title" binding:"omitempty,max=200"`
	Author      string `json:"author" binding:"omitempty,max=100"`
	Publisher   string `json:"publisher" binding:"omitempty,max=100"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Price       int64  `json:"price" binding:"omitempty,min=1,max=999999"` // 价格(分)
}

// RestockRequest HTTP补货请求（店员操作）
type RestockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1,max=99999" example:"50"`
	Remark   string `json:"remark" binding:"max=200" example:"到货补仓"`
}

// RestockResponse HTTP补货响应
type RestockResponse struct {
	BookID    uint `json:"book_id" example:"1"`
	Available int  `json:"available" example:"150"`
}

// StockLogItem HTTP库存变更日志项
type StockLogItem struct {
	ID         uint   `json:"id" example:"1"`
	BookID     uint   `json:"book_id" example:"1"`
	ChangeType string `json:"change_type" example:"RESERVE"` // RESERVE/RELEASE/RESTOCK
	Quantity   int    `json:"quantity" example:"-2"`
	OrderNo    string `json:"order_no,omitempty" example:"ORD1699248000123456"`
	OperatorID uint   `json:"operator_id" example:"1"`
	Remark     string `json:"remark,omitempty" example:"下单失败回滚"`
	CreatedAt  string `json:"created_at" example:"2024-11-06 10:30:00"`
}

// FormatPriceYuan 格式化价格(分→元)
// 例如:5900分 → "59.00"
func FormatPriceYuan(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
