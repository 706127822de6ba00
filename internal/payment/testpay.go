package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// 测试订单状态
const (
	testStatusPending = "pending"
	testStatusPaid    = "paid"
)

// testOrder 测试支付的内存订单
type testOrder struct {
	OrderNo   string
	Amount    decimal.Decimal
	Status    string
	CreatedAt time.Time
}

// TestGateway 本地测试支付模拟器
// 订单放在进程内map里，延迟到点后自动翻成已支付并回调通知。
// 纯开发辅助，不持久化，多实例之间也不同步
type TestGateway struct {
	mu     sync.Mutex
	orders map[string]*testOrder
	delay  time.Duration
	onPaid func(orderNo string) // 翻单后触发的回调，由支付服务注入
}

// NewTestGateway 创建测试支付模拟器
func NewTestGateway(delaySeconds int) *TestGateway {
	return &TestGateway{
		orders: make(map[string]*testOrder),
		delay:  time.Duration(delaySeconds) * time.Second,
	}
}

// Code 渠道代码
func (g *TestGateway) Code() string { return CodeTest }

// SetOnPaid 设置翻单回调
func (g *TestGateway) SetOnPaid(fn func(orderNo string)) {
	g.onPaid = fn
}

// CreatePayment 登记测试订单并启动翻单定时器
func (g *TestGateway) CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	g.mu.Lock()
	g.orders[req.OrderNo] = &testOrder{
		OrderNo:   req.OrderNo,
		Amount:    req.Amount,
		Status:    testStatusPending,
		CreatedAt: time.Now(),
	}
	g.mu.Unlock()

	// 到点自动支付
	time.AfterFunc(g.delay, func() {
		g.mu.Lock()
		order, ok := g.orders[req.OrderNo]
		if ok && order.Status == testStatusPending {
			order.Status = testStatusPaid
		}
		g.mu.Unlock()

		if ok && g.onPaid != nil {
			g.onPaid(req.OrderNo)
		}
	})

	return &CreateResult{
		PayURL: fmt.Sprintf("%s?order_no=%s", req.ReturnURL, req.OrderNo),
	}, nil
}

// Status 查询测试订单状态
func (g *TestGateway) Status(orderNo string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	order, ok := g.orders[orderNo]
	if !ok {
		return "", false
	}
	return order.Status, true
}

// VerifyNotify 校验测试支付"通知"
// 只认模拟器自己已翻单的订单号，外部伪造的订单号不存在于map中
func (g *TestGateway) VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error) {
	params, err := formToMap(r)
	if err != nil {
		return nil, err
	}

	orderNo := params["order_no"]
	g.mu.Lock()
	order, ok := g.orders[orderNo]
	g.mu.Unlock()
	if !ok {
		return nil, errors.New("测试订单不存在")
	}

	return &NotifyResult{
		OrderNo:         order.OrderNo,
		ProviderTradeNo: "TEST" + order.OrderNo,
		Amount:          order.Amount,
		Succeeded:       order.Status == testStatusPaid,
		Raw:             params,
	}, nil
}

// SuccessAck 测试支付成功确认
func (g *TestGateway) SuccessAck() (string, string) {
	return "text/plain; charset=utf-8", "success"
}

// FailAck 测试支付失败确认
func (g *TestGateway) FailAck(msg string) (string, string) {
	return "text/plain; charset=utf-8", "fail"
}
