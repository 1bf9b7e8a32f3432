package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookmall/internal/domain/cart"
	"github.com/xiebiao/bookmall/internal/domain/inventory"
	"github.com/xiebiao/bookmall/internal/domain/order"
	"github.com/xiebiao/bookmall/internal/domain/shipping"
	"github.com/xiebiao/bookmall/internal/infrastructure/event"
	apperrors "github.com/xiebiao/bookmall/pkg/errors"
	"github.com/xiebiao/bookmall/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitMetrics()
	m.Run()
}

// =========================================
// 内存假实现
// 教学要点：用例只依赖接口，单元测试里用内存实现替换数据库，
// 既快又能精确注入"第N行预留失败""购物车被抢先结算"这类并发场景
// =========================================

type fakeCartRepo struct {
	cart       *cart.Cart // 用户敞开的购物车，nil表示没有
	consumeErr error      // 注入Consume失败（模拟并发重复提交）
	consumed   []uint     // 记录被结算的购物车ID
}

func (f *fakeCartRepo) GetOrCreateOpen(ctx context.Context, userID uint) (*cart.Cart, error) {
	panic("下单链路不应调用GetOrCreateOpen")
}

func (f *fakeCartRepo) FindByID(ctx context.Context, id uint) (*cart.Cart, error) {
	if f.cart != nil && f.cart.ID == id {
		return f.cart, nil
	}
	return nil, cart.ErrCartNotFound
}

func (f *fakeCartRepo) FindOpenByUserID(ctx context.Context, userID uint) (*cart.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID || !f.cart.IsOpen() {
		return nil, cart.ErrCartNotFound
	}
	return f.cart, nil
}

func (f *fakeCartRepo) SaveItems(ctx context.Context, c *cart.Cart) error {
	return nil
}

func (f *fakeCartRepo) Consume(ctx context.Context, cartID uint) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	if f.cart == nil || f.cart.ID != cartID || !f.cart.IsOpen() {
		return cart.ErrCartConsumed
	}
	f.cart.Status = cart.CartStatusConsumed
	f.consumed = append(f.consumed, cartID)
	return nil
}

func (f *fakeCartRepo) HasConsumedByUserID(ctx context.Context, userID uint) (bool, error) {
	return f.cart != nil && f.cart.UserID == userID && f.cart.Status == cart.CartStatusConsumed, nil
}

type fakeOrderRepo struct {
	created   *order.Order
	createErr error

	// snapshotStatus 非nil时FindByID返回的快照固定为该状态，
	// 模拟并发事务都读到旧状态、领域校验全部通过的场景：
	// 此时数据库里的条件UPDATE是最后一道防线
	snapshotStatus *order.OrderStatus
}

func (f *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	o.ID = 1001
	f.created = o
	return nil
}

// FindByID 每次返回独立快照
// 模拟两个并发事务各自SELECT同一行：改快照不会改到"数据库"里的订单
func (f *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	if f.created != nil && f.created.ID == id {
		cp := cloneOrder(f.created)
		if f.snapshotStatus != nil {
			cp.Status = *f.snapshotStatus
		}
		return cp, nil
	}
	return nil, order.ErrOrderNotFound
}

func (f *fakeOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	if f.created != nil && f.created.OrderNo == orderNo {
		return cloneOrder(f.created), nil
	}
	return nil, order.ErrOrderNotFound
}

// TransitionStatus 模拟条件UPDATE：只看"数据库"里的当前状态，不看调用方快照
func (f *fakeOrderRepo) TransitionStatus(ctx context.Context, orderID uint, from []order.OrderStatus, to order.OrderStatus) error {
	if f.created == nil || f.created.ID != orderID {
		return order.ErrInvalidStatusTransition
	}
	for _, s := range from {
		if f.created.Status == s {
			f.created.Status = to
			return nil
		}
	}
	return order.ErrInvalidStatusTransition
}

func (f *fakeOrderRepo) UpdatePayment(ctx context.Context, p *order.Payment) error {
	if p == nil || f.created == nil || f.created.Payment == nil {
		return nil
	}
	f.created.Payment.Status = p.Status
	f.created.Payment.UpdatedAt = p.UpdatedAt
	return nil
}

func cloneOrder(o *order.Order) *order.Order {
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	if o.Payment != nil {
		p := *o.Payment
		cp.Payment = &p
	}
	return &cp
}

func (f *fakeOrderRepo) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	if f.created != nil && f.created.UserID == userID {
		return []*order.Order{f.created}, 1, nil
	}
	return nil, 0, nil
}

type fakeShippingRepo struct {
	method *shipping.Method
}

func (f *fakeShippingRepo) Create(ctx context.Context, m *shipping.Method) error { return nil }

func (f *fakeShippingRepo) FindActiveByID(ctx context.Context, id uint) (*shipping.Method, error) {
	if f.method != nil && f.method.ID == id && f.method.Active {
		return f.method, nil
	}
	return nil, shipping.ErrMethodNotFound
}

func (f *fakeShippingRepo) ListActive(ctx context.Context) ([]*shipping.Method, error) {
	if f.method != nil && f.method.Active {
		return []*shipping.Method{f.method}, nil
	}
	return nil, nil
}

func (f *fakeShippingRepo) Update(ctx context.Context, m *shipping.Method) error { return nil }

// fakeInventoryRepo 内存库存台账
// reserveSeq记录预留调用的BookID顺序，用于验证"按BookID升序预留"
type fakeInventoryRepo struct {
	available  map[uint]int
	reserveSeq []uint
}

func (f *fakeInventoryRepo) Create(ctx context.Context, s *inventory.Stock) error {
	f.available[s.BookID] = s.Available
	return nil
}

func (f *fakeInventoryRepo) FindByBookID(ctx context.Context, bookID uint) (*inventory.Stock, error) {
	n, ok := f.available[bookID]
	if !ok {
		return nil, inventory.ErrStockNotFound
	}
	return &inventory.Stock{BookID: bookID, Available: n}, nil
}

func (f *fakeInventoryRepo) Reserve(ctx context.Context, bookID uint, quantity int) error {
	f.reserveSeq = append(f.reserveSeq, bookID)
	if f.available[bookID] < quantity {
		return inventory.ErrInsufficientStock
	}
	f.available[bookID] -= quantity
	return nil
}

func (f *fakeInventoryRepo) Release(ctx context.Context, bookID uint, quantity int) error {
	f.available[bookID] += quantity
	return nil
}

func (f *fakeInventoryRepo) Restock(ctx context.Context, bookID uint, quantity int) error {
	f.available[bookID] += quantity
	return nil
}

type fakeLogRepo struct {
	logs []*inventory.Log
}

func (f *fakeLogRepo) Append(ctx context.Context, l *inventory.Log) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeLogRepo) ListByBookID(ctx context.Context, bookID uint, page, pageSize int) ([]*inventory.Log, int64, error) {
	return f.logs, int64(len(f.logs)), nil
}

func (f *fakeLogRepo) countByType(t inventory.ChangeType) int {
	n := 0
	for _, l := range f.logs {
		if l.ChangeType == t {
			n++
		}
	}
	return n
}

// fakeTxManager 直接执行fn：单元测试不关心事务边界本身，
// 只关心事务内的调用序列与失败传播
type fakeTxManager struct{}

func (fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =========================================
// 测试脚手架
// =========================================

type placeOrderFixture struct {
	uc        *PlaceOrderUseCase
	cartRepo  *fakeCartRepo
	orderRepo *fakeOrderRepo
	invRepo   *fakeInventoryRepo
	logRepo   *fakeLogRepo
}

// newPlaceOrderFixture 三本书（BookID故意乱序）、每本库存10件的标准场景
func newPlaceOrderFixture(t *testing.T) *placeOrderFixture {
	t.Helper()

	c := &cart.Cart{
		ID:     7,
		UserID: 1,
		Status: cart.CartStatusOpen,
		Items: []cart.CartItem{
			{CartID: 7, BookID: 30, Title: "代码大全", UnitPrice: 8800, Quantity: 1},
			{CartID: 7, BookID: 10, Title: "Go程序设计语言", UnitPrice: 7900, Quantity: 2},
			{CartID: 7, BookID: 20, Title: "设计数据密集型应用", UnitPrice: 9900, Quantity: 3},
		},
	}

	cartRepo := &fakeCartRepo{cart: c}
	orderRepo := &fakeOrderRepo{}
	invRepo := &fakeInventoryRepo{available: map[uint]int{10: 10, 20: 10, 30: 10}}
	logRepo := &fakeLogRepo{}
	shippingRepo := &fakeShippingRepo{
		method: &shipping.Method{ID: 3, Name: "标准快递", Fee: 1200, EstimatedDays: 3, Active: true},
	}

	uc := NewPlaceOrderUseCase(cartRepo, orderRepo, shippingRepo, invRepo, logRepo,
		fakeTxManager{}, event.NewNopPublisher())

	return &placeOrderFixture{
		uc:        uc,
		cartRepo:  cartRepo,
		orderRepo: orderRepo,
		invRepo:   invRepo,
		logRepo:   logRepo,
	}
}

func defaultRequest() PlaceOrderRequest {
	return PlaceOrderRequest{
		UserID:           1,
		ShippingMethodID: 3,
		Address:          "浙江省杭州市西湖区文三路100号",
	}
}

// =========================================
// 用例测试
// =========================================

func TestPlaceOrder_Success(t *testing.T) {
	f := newPlaceOrderFixture(t)

	resp, err := f.uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	t.Run("金额为行快照小计加运费", func(t *testing.T) {
		// 8800*1 + 7900*2 + 9900*3 = 54300，运费1200
		assert.Equal(t, int64(55500), resp.Total)
		assert.Equal(t, "555.00", resp.TotalYuan)
	})

	t.Run("库存按数量扣减", func(t *testing.T) {
		assert.Equal(t, 8, f.invRepo.available[10])
		assert.Equal(t, 7, f.invRepo.available[20])
		assert.Equal(t, 9, f.invRepo.available[30])
	})

	t.Run("预留按BookID升序执行", func(t *testing.T) {
		assert.Equal(t, []uint{10, 20, 30}, f.invRepo.reserveSeq)
	})

	t.Run("购物车已结算", func(t *testing.T) {
		assert.Equal(t, cart.CartStatusConsumed, f.cartRepo.cart.Status)
		assert.Equal(t, []uint{7}, f.cartRepo.consumed)
	})

	t.Run("订单落库且携带支付记录", func(t *testing.T) {
		created := f.orderRepo.created
		require.NotNil(t, created)
		assert.Equal(t, order.OrderStatusPending, created.Status)
		assert.Equal(t, uint(7), created.CartID)
		assert.Len(t, created.Items, 3)
		require.NotNil(t, created.Payment)
		assert.Equal(t, order.PaymentStatusPaid, created.Payment.Status)
		assert.Equal(t, created.Total, created.Payment.Amount)
	})

	t.Run("每行各留一条预留日志", func(t *testing.T) {
		assert.Equal(t, 3, f.logRepo.countByType(inventory.ChangeTypeReserve))
		assert.Equal(t, 0, f.logRepo.countByType(inventory.ChangeTypeRelease))
	})
}

func TestPlaceOrder_InsufficientStockReleasesEarlierLines(t *testing.T) {
	f := newPlaceOrderFixture(t)
	// BookID=20排在第二位，让它库存不足：第一行（BookID=10）预留成功后必须被释放
	f.invRepo.available[20] = 2

	resp, err := f.uc.Execute(context.Background(), defaultRequest())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientStock))

	t.Run("全部库存回到初始值", func(t *testing.T) {
		assert.Equal(t, 10, f.invRepo.available[10])
		assert.Equal(t, 2, f.invRepo.available[20])
		assert.Equal(t, 10, f.invRepo.available[30])
	})

	t.Run("失败行之后的行未被预留", func(t *testing.T) {
		assert.Equal(t, []uint{10, 20}, f.invRepo.reserveSeq)
	})

	t.Run("购物车保持敞开可重试", func(t *testing.T) {
		assert.Equal(t, cart.CartStatusOpen, f.cartRepo.cart.Status)
	})

	t.Run("未创建订单", func(t *testing.T) {
		assert.Nil(t, f.orderRepo.created)
	})

	t.Run("释放留痕", func(t *testing.T) {
		assert.Equal(t, 1, f.logRepo.countByType(inventory.ChangeTypeRelease))
	})
}

func TestPlaceOrder_ConsumeConflictReleasesAllLines(t *testing.T) {
	f := newPlaceOrderFixture(t)
	// 模拟并发重复提交：另一个请求抢先把购物车open→consumed，
	// 本请求的条件UPDATE未命中
	f.cartRepo.consumeErr = cart.ErrCartConsumed

	resp, err := f.uc.Execute(context.Background(), defaultRequest())
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCartConsumed))

	t.Run("三行预留全部被释放", func(t *testing.T) {
		assert.Equal(t, 10, f.invRepo.available[10])
		assert.Equal(t, 10, f.invRepo.available[20])
		assert.Equal(t, 10, f.invRepo.available[30])
		assert.Equal(t, 3, f.logRepo.countByType(inventory.ChangeTypeRelease))
	})

	t.Run("未创建订单", func(t *testing.T) {
		assert.Nil(t, f.orderRepo.created)
	})
}

// TestPlaceOrder_SequentialResubmit 串行的重复提交
// 第一单成功后购物车已是consumed，再次提交应与并发重复提交
// 报同一类错误（购物车已结算），而不是"购物车为空"
func TestPlaceOrder_SequentialResubmit(t *testing.T) {
	f := newPlaceOrderFixture(t)

	_, err := f.uc.Execute(context.Background(), defaultRequest())
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), defaultRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCartConsumed))
	assert.False(t, apperrors.IsCode(err, apperrors.ErrCodeCartEmpty))

	t.Run("第二次提交零副作用", func(t *testing.T) {
		assert.Equal(t, 8, f.invRepo.available[10])
		assert.Equal(t, 7, f.invRepo.available[20])
		assert.Equal(t, 9, f.invRepo.available[30])
		assert.Equal(t, []uint{7}, f.cartRepo.consumed)
	})
}

func TestPlaceOrder_OrderCreateFailureReleasesAllLines(t *testing.T) {
	f := newPlaceOrderFixture(t)
	f.orderRepo.createErr = apperrors.New(apperrors.ErrCodeDatabaseError, "数据库错误")

	_, err := f.uc.Execute(context.Background(), defaultRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))

	// 落库事务失败同样触发前面所有行的释放
	assert.Equal(t, 10, f.invRepo.available[10])
	assert.Equal(t, 10, f.invRepo.available[20])
	assert.Equal(t, 10, f.invRepo.available[30])
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	t.Run("购物车无行", func(t *testing.T) {
		f := newPlaceOrderFixture(t)
		f.cartRepo.cart.Items = nil

		_, err := f.uc.Execute(context.Background(), defaultRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCartEmpty))
		assert.Empty(t, f.invRepo.reserveSeq)
	})

	t.Run("用户没有敞开的购物车", func(t *testing.T) {
		f := newPlaceOrderFixture(t)
		f.cartRepo.cart = nil

		_, err := f.uc.Execute(context.Background(), defaultRequest())
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCartEmpty))
	})
}

func TestPlaceOrder_ShippingMethodValidation(t *testing.T) {
	t.Run("配送方式不存在", func(t *testing.T) {
		f := newPlaceOrderFixture(t)
		req := defaultRequest()
		req.ShippingMethodID = 999

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeShippingNotFound))
		assert.Empty(t, f.invRepo.reserveSeq, "校验失败不应触碰库存")
	})

	t.Run("收货地址为空", func(t *testing.T) {
		f := newPlaceOrderFixture(t)
		req := defaultRequest()
		req.Address = ""

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidParams))
	})
}

func TestCancelOrder(t *testing.T) {
	newCancelFixture := func(t *testing.T) (*CancelOrderUseCase, *fakeOrderRepo, *fakeInventoryRepo, *fakeLogRepo) {
		t.Helper()
		items := []order.OrderItem{
			{BookID: 10, Title: "Go程序设计语言", Quantity: 2, Price: 7900},
		}
		o := order.NewOrder("ORD123", 1, 7, items, "标准快递", 1200, "杭州市西湖区")
		o.AttachPayment("模拟支付")
		o.ID = 1001

		orderRepo := &fakeOrderRepo{created: o}
		invRepo := &fakeInventoryRepo{available: map[uint]int{10: 8}}
		logRepo := &fakeLogRepo{}
		uc := NewCancelOrderUseCase(orderRepo, invRepo, logRepo,
			fakeTxManager{}, event.NewNopPublisher())
		return uc, orderRepo, invRepo, logRepo
	}

	t.Run("待处理订单可取消并回补库存", func(t *testing.T) {
		uc, orderRepo, invRepo, logRepo := newCancelFixture(t)

		err := uc.Execute(context.Background(), 1, 1001, false)
		require.NoError(t, err)

		assert.Equal(t, order.OrderStatusCancelled, orderRepo.created.Status)
		assert.Equal(t, order.PaymentStatusRefunded, orderRepo.created.Payment.Status)
		assert.Equal(t, 10, invRepo.available[10])
		assert.Equal(t, 1, logRepo.countByType(inventory.ChangeTypeRelease))
	})

	t.Run("已发货订单不可取消", func(t *testing.T) {
		uc, orderRepo, invRepo, _ := newCancelFixture(t)
		orderRepo.created.Status = order.OrderStatusShipped

		err := uc.Execute(context.Background(), 1, 1001, false)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidOrderStatus))
		assert.Equal(t, 8, invRepo.available[10], "拒绝取消不应回补库存")
	})

	t.Run("非买家不能取消他人订单", func(t *testing.T) {
		uc, _, _, _ := newCancelFixture(t)

		err := uc.Execute(context.Background(), 2, 1001, false)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeForbidden))
	})

	t.Run("店员可以取消他人订单", func(t *testing.T) {
		uc, orderRepo, invRepo, _ := newCancelFixture(t)

		err := uc.Execute(context.Background(), 99, 1001, true)
		require.NoError(t, err)
		assert.Equal(t, order.OrderStatusCancelled, orderRepo.created.Status)
		assert.Equal(t, 10, invRepo.available[10])
	})

	// 两个取消请求的事务都读到"待处理"快照，领域校验都通过；
	// 只有第一个的条件UPDATE命中。没有这道守卫，两次取消会
	// 各回补一次库存（8 → 12而不是10）
	t.Run("并发取消只回补一次库存", func(t *testing.T) {
		uc, orderRepo, invRepo, logRepo := newCancelFixture(t)
		pending := order.OrderStatusPending
		orderRepo.snapshotStatus = &pending

		require.NoError(t, uc.Execute(context.Background(), 1, 1001, false))

		err := uc.Execute(context.Background(), 1, 1001, false)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidOrderStatus))

		assert.Equal(t, 10, invRepo.available[10], "库存只回补一次")
		assert.Equal(t, 1, logRepo.countByType(inventory.ChangeTypeRelease))
		assert.Equal(t, order.OrderStatusCancelled, orderRepo.created.Status)
	})
}

func TestAdvanceOrder(t *testing.T) {
	newAdvanceFixture := func(t *testing.T) (*AdvanceOrderUseCase, *fakeOrderRepo) {
		t.Helper()
		o := order.NewOrder("ORD456", 1, 7,
			[]order.OrderItem{{BookID: 10, Title: "Go程序设计语言", Quantity: 1, Price: 7900}},
			"标准快递", 1200, "杭州市西湖区")
		o.ID = 2001
		orderRepo := &fakeOrderRepo{created: o}
		return NewAdvanceOrderUseCase(orderRepo), orderRepo
	}

	t.Run("沿状态机推进", func(t *testing.T) {
		uc, orderRepo := newAdvanceFixture(t)

		resp, err := uc.Execute(context.Background(), AdvanceOrderRequest{OrderID: 2001, TargetStatus: 2})
		require.NoError(t, err)
		assert.Equal(t, "处理中", resp.Status)
		assert.Equal(t, order.OrderStatusProcessing, orderRepo.created.Status)
	})

	t.Run("跳级推进被拒绝", func(t *testing.T) {
		uc, _ := newAdvanceFixture(t)

		_, err := uc.Execute(context.Background(), AdvanceOrderRequest{OrderID: 2001, TargetStatus: 3})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidOrderStatus))
	})

	// 两个店员都基于"待处理"快照推进：领域校验都通过，
	// 第二个的条件UPDATE未命中，不会覆盖第一个的推进
	t.Run("基于过期快照的推进被拒绝", func(t *testing.T) {
		uc, orderRepo := newAdvanceFixture(t)
		pending := order.OrderStatusPending
		orderRepo.snapshotStatus = &pending

		_, err := uc.Execute(context.Background(), AdvanceOrderRequest{OrderID: 2001, TargetStatus: 2})
		require.NoError(t, err)

		_, err = uc.Execute(context.Background(), AdvanceOrderRequest{OrderID: 2001, TargetStatus: 2})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidOrderStatus))
		assert.Equal(t, order.OrderStatusProcessing, orderRepo.created.Status)
	})
}
