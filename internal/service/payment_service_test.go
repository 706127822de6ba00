package service

import (
	"context"
	"testing"
	"time"

	"starweb/config"
	"starweb/internal/model"
	"starweb/internal/payment"
	"starweb/internal/repository"
	"starweb/pkg/async"
	"starweb/pkg/email"
	"starweb/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockOrderRepo 订单仓库Mock
type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepo) GetOrderByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	args := m.Called(ctx, orderNo)
	if order := args.Get(0); order != nil {
		return order.(*model.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64, page, pageSize int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, status, page, pageSize int) ([]model.Order, int64, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]model.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) MarkPaid(ctx context.Context, orderNo, payChannel, providerTradeNo string) (bool, error) {
	args := m.Called(ctx, orderNo, payChannel, providerTradeNo)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderNo string, status int) error {
	args := m.Called(ctx, orderNo, status)
	return args.Error(0)
}

func (m *mockOrderRepo) SetProductKey(ctx context.Context, orderNo, key string) error {
	args := m.Called(ctx, orderNo, key)
	return args.Error(0)
}

func (m *mockOrderRepo) CancelExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// mockKeyRepo 卡密仓库Mock
type mockKeyRepo struct {
	mock.Mock
}

func (m *mockKeyRepo) BulkCreate(ctx context.Context, keys []model.ProductKey) (int, error) {
	args := m.Called(ctx, keys)
	return args.Int(0), args.Error(1)
}

func (m *mockKeyRepo) ClaimKey(ctx context.Context, productID, orderID, userID int64) (*model.ProductKey, error) {
	args := m.Called(ctx, productID, orderID, userID)
	if key := args.Get(0); key != nil {
		return key.(*model.ProductKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockKeyRepo) GetByOrderID(ctx context.Context, orderID int64) (*model.ProductKey, error) {
	args := m.Called(ctx, orderID)
	if key := args.Get(0); key != nil {
		return key.(*model.ProductKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockKeyRepo) CountAvailable(ctx context.Context, productID int64) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockKeyRepo) ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]model.ProductKey, int64, error) {
	args := m.Called(ctx, productID, page, pageSize)
	return args.Get(0).([]model.ProductKey), args.Get(1).(int64), args.Error(2)
}

func (m *mockKeyRepo) UpdateStatus(ctx context.Context, id int64, status int) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockKeyRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockMembershipRepo 会员仓库Mock
type mockMembershipRepo struct {
	mock.Mock
}

func (m *mockMembershipRepo) GetByUserID(ctx context.Context, userID int64) (*model.UserMembership, error) {
	args := m.Called(ctx, userID)
	if ms := args.Get(0); ms != nil {
		return ms.(*model.UserMembership), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMembershipRepo) Create(ctx context.Context, ms *model.UserMembership) error {
	args := m.Called(ctx, ms)
	return args.Error(0)
}

func (m *mockMembershipRepo) UpdatePeriod(ctx context.Context, userID int64, membershipType string, endDate time.Time, active bool) error {
	args := m.Called(ctx, userID, membershipType, endDate, active)
	return args.Error(0)
}

func (m *mockMembershipRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// mockProductReader 商品读取Mock
type mockProductReader struct {
	mock.Mock
}

func (m *mockProductReader) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubUserService 只实现发货路径用到的GetByID
type stubUserService struct {
	UserService
	user *repository.User
}

func (s *stubUserService) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	return s.user, nil
}

// newTestPaymentService 构造只含结算依赖的支付服务
func newTestPaymentService(orders *mockOrderRepo, keys *mockKeyRepo, memberships *mockMembershipRepo, products *mockProductReader) *PaymentService {
	log := logger.NewLogger("error")
	return &PaymentService{
		orderRepo:      orders,
		keyRepo:        keys,
		membershipRepo: memberships,
		productRepo:    products,
		userSvc:        &stubUserService{user: &repository.User{ID: 7, Username: "buyer", Email: "buyer@example.com"}},
		worker:         async.NewWorker(10, log),
		emailSvc:       email.NewService(email.Config{}, log),
		logger:         log,
		cfg:            &config.Config{},
	}
}

func pendingOrder() *model.Order {
	return &model.Order{
		ID:        42,
		OrderNo:   "SW20260830120000abcd1234",
		UserID:    7,
		ProductID: 3,
		Amount:    decimal.RequireFromString("30.00"),
		Status:    model.OrderStatusPending,
	}
}

func successNotify(order *model.Order) *payment.NotifyResult {
	return &payment.NotifyResult{
		OrderNo:         order.OrderNo,
		ProviderTradeNo: "TRADE1",
		Amount:          order.Amount,
		Succeeded:       true,
	}
}

func TestSettleMembershipFirstPurchase(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil)
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "alipay", "TRADE1").Return(true, nil)
	orders.On("UpdateStatus", mock.Anything, order.OrderNo, model.OrderStatusCompleted).Return(nil)
	products.On("GetProductByID", mock.Anything, int64(3)).Return(&model.Product{
		ID: 3, Name: "会员月卡", Type: model.ProductTypeMembership, DurationDays: 30,
		Price: order.Amount,
	}, nil)
	memberships.On("GetByUserID", mock.Anything, int64(7)).Return(nil, nil)
	memberships.On("Create", mock.Anything, mock.MatchedBy(func(m *model.UserMembership) bool {
		// 首购从现在起算30天
		return m.UserID == 7 && m.IsActive &&
			m.EndDate.Sub(m.StartDate) == 30*24*time.Hour
	})).Return(nil)

	err := svc.settle(context.Background(), "alipay", successNotify(order))
	require.NoError(t, err)
	orders.AssertExpectations(t)
	memberships.AssertExpectations(t)
}

func TestSettleMembershipExtension(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	currentEnd := time.Now().Add(10 * 24 * time.Hour)
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil)
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "alipay", "TRADE1").Return(true, nil)
	orders.On("UpdateStatus", mock.Anything, order.OrderNo, model.OrderStatusCompleted).Return(nil)
	products.On("GetProductByID", mock.Anything, int64(3)).Return(&model.Product{
		ID: 3, Name: "会员月卡", Type: model.ProductTypeMembership, DurationDays: 30,
		Price: order.Amount,
	}, nil)
	memberships.On("GetByUserID", mock.Anything, int64(7)).Return(&model.UserMembership{
		UserID: 7, IsActive: true, EndDate: currentEnd,
	}, nil)
	// 未到期会员在原到期时间上顺延
	memberships.On("UpdatePeriod", mock.Anything, int64(7), "会员月卡",
		currentEnd.Add(30*24*time.Hour), true).Return(nil)

	err := svc.settle(context.Background(), "alipay", successNotify(order))
	require.NoError(t, err)
	memberships.AssertExpectations(t)
}

func TestSettleCardKeyFulfillment(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil)
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "epay", "TRADE1").Return(true, nil)
	orders.On("SetProductKey", mock.Anything, order.OrderNo, "CARD-SECRET-1").Return(nil)
	orders.On("UpdateStatus", mock.Anything, order.OrderNo, model.OrderStatusCompleted).Return(nil)
	products.On("GetProductByID", mock.Anything, int64(3)).Return(&model.Product{
		ID: 3, Name: "激活码", Type: model.ProductTypeCardKey, Price: order.Amount,
	}, nil)
	keys.On("ClaimKey", mock.Anything, int64(3), int64(42), int64(7)).Return(&model.ProductKey{
		ID: 9, ProductID: 3, Secret: "CARD-SECRET-1", Status: model.KeyStatusSold,
	}, nil)

	err := svc.settle(context.Background(), "epay", successNotify(order))
	require.NoError(t, err)
	orders.AssertExpectations(t)
	keys.AssertExpectations(t)
}

func TestSettleCardKeyPoolEmpty(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil)
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "epay", "TRADE1").Return(true, nil)
	products.On("GetProductByID", mock.Anything, int64(3)).Return(&model.Product{
		ID: 3, Name: "激活码", Type: model.ProductTypeCardKey, Price: order.Amount,
	}, nil)
	keys.On("ClaimKey", mock.Anything, int64(3), int64(42), int64(7)).
		Return(nil, repository.ErrNoAvailableKey)

	// 卡密卖空不算结算失败，订单保持已支付等人工补发
	err := svc.settle(context.Background(), "epay", successNotify(order))
	require.NoError(t, err)
	orders.AssertNotCalled(t, "SetProductKey", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleDuplicateNotify(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	notify := successNotify(order)

	// 条件更新没命中，重读发现订单已是完成态，按重复通知放行
	completed := *order
	completed.Status = model.OrderStatusCompleted
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil).Once()
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "alipay", "TRADE1").Return(false, nil)
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(&completed, nil).Once()

	err := svc.settle(context.Background(), "alipay", notify)
	require.NoError(t, err)

	// 重复通知不触发二次发货
	products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	keys.AssertNotCalled(t, "ClaimKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleLatePaymentOnCancelledOrder(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	notify := successNotify(order)

	// 订单已被取消后才收到支付：应答成功止住渠道重试，状态保持已取消
	cancelled := *order
	cancelled.Status = model.OrderStatusCancelled
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil).Once()
	orders.On("MarkPaid", mock.Anything, order.OrderNo, "alipay", "TRADE1").Return(false, nil)
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(&cancelled, nil).Once()

	err := svc.settle(context.Background(), "alipay", notify)
	require.NoError(t, err)

	// 不发货也不改状态，留给管理后台对账
	products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleAmountMismatch(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	order := pendingOrder()
	orders.On("GetOrderByOrderNo", mock.Anything, order.OrderNo).Return(order, nil)

	notify := successNotify(order)
	notify.Amount = decimal.RequireFromString("0.01")

	err := svc.settle(context.Background(), "alipay", notify)
	assert.Error(t, err)
	orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettleUnknownOrder(t *testing.T) {
	orders := new(mockOrderRepo)
	keys := new(mockKeyRepo)
	memberships := new(mockMembershipRepo)
	products := new(mockProductReader)
	svc := newTestPaymentService(orders, keys, memberships, products)

	orders.On("GetOrderByOrderNo", mock.Anything, "nope").Return(nil, nil)

	notify := &payment.NotifyResult{OrderNo: "nope", Succeeded: true}
	err := svc.settle(context.Background(), "alipay", notify)
	assert.Error(t, err)
}

func TestGenOrderNo(t *testing.T) {
	a, b := genOrderNo(), genOrderNo()
	assert.True(t, len(a) > 16)
	assert.Equal(t, "SW", a[:2])
	assert.NotEqual(t, a, b)
}
