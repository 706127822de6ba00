package payment

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestGatewayAutoPaid(t *testing.T) {
	gw := NewTestGateway(0)

	paid := make(chan string, 1)
	gw.SetOnPaid(func(orderNo string) { paid <- orderNo })

	_, err := gw.CreatePayment(context.Background(), &CreateRequest{
		OrderNo:   "SW1",
		Amount:    decimal.RequireFromString("1.00"),
		ReturnURL: "https://site.example.com/shop/result",
	})
	require.NoError(t, err)

	select {
	case orderNo := <-paid:
		assert.Equal(t, "SW1", orderNo)
	case <-time.After(2 * time.Second):
		t.Fatal("翻单回调未触发")
	}

	status, ok := gw.Status("SW1")
	assert.True(t, ok)
	assert.Equal(t, testStatusPaid, status)
}

func TestTestGatewayStatusUnknown(t *testing.T) {
	gw := NewTestGateway(0)
	_, ok := gw.Status("nope")
	assert.False(t, ok)
}

func TestTestGatewayVerifyNotifyUnknownOrder(t *testing.T) {
	gw := NewTestGateway(0)

	// 模拟器里不存在的订单号一律拒绝
	r := httptest.NewRequest("POST", "/", epayForm(map[string]string{"order_no": "forged"}))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)
}

func TestTestGatewayVerifyNotifyKnownOrder(t *testing.T) {
	gw := NewTestGateway(0)

	_, err := gw.CreatePayment(context.Background(), &CreateRequest{
		OrderNo: "SW2",
		Amount:  decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)

	// 等待翻单
	require.Eventually(t, func() bool {
		status, ok := gw.Status("SW2")
		return ok && status == testStatusPaid
	}, 2*time.Second, 10*time.Millisecond)

	r := httptest.NewRequest("POST", "/", epayForm(map[string]string{"order_no": "SW2"}))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
	assert.Equal(t, "SW2", notify.OrderNo)
	assert.Equal(t, "2.5", notify.Amount.String())
}
