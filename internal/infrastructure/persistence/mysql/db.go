package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/bookmall/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.Database.DSN()

	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 连接池配置
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 自动迁移表结构（开发环境）
	// 注意：生产环境应使用版本化的迁移脚本（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&StockModel{},
		&InventoryLogModel{},
		&CartModel{},
		&CartItemModel{},
		&ShippingMethodModel{},
		&OrderModel{},
		&OrderItemModel{},
		&PaymentModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层的实体不依赖GORM，Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	Nickname  string         `gorm:"size:50;not null;comment:昵称"`
	Role      string         `gorm:"size:20;not null;default:customer;comment:角色(customer/staff)"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明：
// 1. 价格使用int64存储"分"为单位（避免浮点数精度问题）
// 2. ISBN有唯一索引，防止重复
// 3. 没有库存字段：库存在stocks表单独管理（见StockModel）
type BookModel struct {
	ID          uint           `gorm:"primaryKey"`
	ISBN        string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title       string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Author      string         `gorm:"index:idx_search;size:100;not null;comment:作者"`
	Publisher   string         `gorm:"size:100;not null;comment:出版社"`
	Price       int64          `gorm:"not null;comment:价格(分)"`
	CoverURL    string         `gorm:"size:500;comment:封面图片URL"`
	Description string         `gorm:"type:text;comment:图书描述"`
	PublisherID uint           `gorm:"index;not null;comment:发布者用户ID"`
	CreatedAt   time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// StockModel GORM库存台账模型
// 教学要点：
// 1. 每本书一行，BookID唯一索引
// 2. Available的所有变更都走条件UPDATE（见inventory_repo.go），
//    表上不需要悲观锁，行锁由UPDATE语句自然持有
type StockModel struct {
	ID        uint      `gorm:"primaryKey"`
	BookID    uint      `gorm:"uniqueIndex;not null;comment:图书ID"`
	Available int       `gorm:"not null;default:0;comment:可售数量"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (StockModel) TableName() string {
	return "stocks"
}

// InventoryLogModel GORM库存日志模型（Append-Only）
type InventoryLogModel struct {
	ID         uint      `gorm:"primaryKey"`
	BookID     uint      `gorm:"index:idx_book_id;not null;comment:图书ID"`
	ChangeType string    `gorm:"type:varchar(20);not null;comment:变更类型(RESERVE/RELEASE/RESTOCK)"`
	Quantity   int       `gorm:"not null;comment:变更数量(正增负减)"`
	OrderNo    string    `gorm:"index;size:32;comment:关联订单号"`
	OperatorID uint      `gorm:"comment:操作人用户ID"`
	Remark     string    `gorm:"size:255;comment:备注"`
	CreatedAt  time.Time `gorm:"index;comment:创建时间"`
}

// TableName 指定表名
func (InventoryLogModel) TableName() string {
	return "inventory_logs"
}

// CartModel GORM购物车模型
// 教学要点：
// 1. idx_user_open唯一索引保证"一人一辆敞开的车"：
//    open_flag在敞开时=1、结算后置NULL，NULL不参与唯一约束，
//    所以历史上可以有多辆已结算的车，但敞开的永远只有一辆
// 2. Status的open→consumed转换用条件UPDATE（见cart_repo.go）
type CartModel struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"uniqueIndex:idx_user_open;not null;comment:用户ID"`
	Status    int             `gorm:"type:tinyint;not null;default:1;comment:状态(1敞开2已结算)"`
	OpenFlag  *int8           `gorm:"uniqueIndex:idx_user_open;comment:敞开标记(1=敞开,NULL=已结算)"`
	Items     []CartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt time.Time       `gorm:"comment:创建时间"`
	UpdatedAt time.Time       `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (CartModel) TableName() string {
	return "carts"
}

// CartItemModel GORM购物车行模型
// 同一辆车同一本书只有一行（唯一索引），重复加购走UPDATE
type CartItemModel struct {
	ID        uint   `gorm:"primaryKey"`
	CartID    uint   `gorm:"uniqueIndex:idx_cart_book;not null;comment:购物车ID"`
	BookID    uint   `gorm:"uniqueIndex:idx_cart_book;not null;comment:图书ID"`
	Title     string `gorm:"size:200;not null;comment:加入时书名快照"`
	UnitPrice int64  `gorm:"not null;comment:加入时单价快照(分)"`
	Quantity  int    `gorm:"not null;comment:数量"`
}

// TableName 指定表名
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ShippingMethodModel GORM配送方式模型
type ShippingMethodModel struct {
	ID            uint      `gorm:"primaryKey"`
	Name          string    `gorm:"size:50;not null;comment:配送方式名称"`
	Fee           int64     `gorm:"not null;comment:运费(分)"`
	EstimatedDays int       `gorm:"not null;comment:预计送达天数"`
	Active        bool      `gorm:"index;not null;default:1;comment:是否可选"`
	CreatedAt     time.Time `gorm:"comment:创建时间"`
	UpdatedAt     time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ShippingMethodModel) TableName() string {
	return "shipping_methods"
}

// OrderModel GORM订单模型
// 教学要点：
// 1. 与OrderItemModel/PaymentModel是一对多/一对一关系
// 2. CartID唯一索引：一辆购物车最多生成一张订单（幂等兜底）
type OrderModel struct {
	ID              uint             `gorm:"primaryKey"`
	OrderNo         string           `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	UserID          uint             `gorm:"index;not null;comment:买家用户ID"`
	CartID          uint             `gorm:"uniqueIndex;not null;comment:来源购物车ID"`
	Status          int              `gorm:"index;type:tinyint;default:1;comment:订单状态(1待处理2处理中3已发货4已送达5已取消)"`
	ItemsTotal      int64            `gorm:"not null;comment:商品金额合计(分)"`
	ShippingMethod  string           `gorm:"size:50;not null;comment:配送方式名称快照"`
	ShippingFee     int64            `gorm:"not null;comment:运费(分)"`
	Total           int64            `gorm:"not null;comment:订单总金额(分)"`
	ShippingAddress string           `gorm:"size:500;not null;comment:收货地址"`
	Note            string           `gorm:"size:200;comment:买家备注"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"`
	Payment         *PaymentModel    `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time        `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel GORM订单明细模型
// 记录下单时的书名/价格快照
type OrderItemModel struct {
	ID       uint   `gorm:"primaryKey"`
	OrderID  uint   `gorm:"index;not null;comment:订单ID"`
	BookID   uint   `gorm:"index;not null;comment:图书ID"`
	Title    string `gorm:"size:200;not null;comment:下单时书名快照"`
	Quantity int    `gorm:"not null;comment:购买数量"`
	Price    int64  `gorm:"not null;comment:下单时单价(分)"`
	Subtotal int64  `gorm:"not null;comment:行小计(分)"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string {
	return "order_items"
}

// PaymentModel GORM支付记录模型
type PaymentModel struct {
	ID         uint      `gorm:"primaryKey"`
	OrderID    uint      `gorm:"uniqueIndex;not null;comment:订单ID"`
	MethodName string    `gorm:"size:50;not null;comment:支付方式名称"`
	Amount     int64     `gorm:"not null;comment:支付金额(分)"`
	Status     string    `gorm:"size:20;not null;comment:支付状态(paid/refunded)"`
	CreatedAt  time.Time `gorm:"comment:创建时间"`
	UpdatedAt  time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (PaymentModel) TableName() string {
	return "payments"
}
