package payment

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func epayForm(params map[string]string) *strings.Reader {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return strings.NewReader(values.Encode())
}

func TestEpaySign(t *testing.T) {
	params := map[string]string{
		"pid":          "1001",
		"out_trade_no": "SW1",
		"money":        "9.90",
	}
	sign := epaySign(params, "KEY")

	// MD5小写，sign与sign_type不参与签名
	assert.Len(t, sign, 32)
	assert.Equal(t, strings.ToLower(sign), sign)
	params["sign"] = sign
	params["sign_type"] = "MD5"
	assert.Equal(t, sign, epaySign(params, "KEY"))

	// 空值参数不影响签名
	params["param"] = ""
	assert.Equal(t, sign, epaySign(params, "KEY"))
}

func TestEpayCreatePayment(t *testing.T) {
	gw := NewEpayGateway(staticConfig(map[string]string{
		"api_url": "https://pay.example.com/", "pid": "1001", "key": "KEY",
	}))

	result, err := gw.CreatePayment(context.Background(), &CreateRequest{
		OrderNo:   "SW1",
		Subject:   "测试商品",
		Amount:    decimal.RequireFromString("9.9"),
		NotifyURL: "https://site.example.com/api/v1/pay/notify/epay",
		ReturnURL: "https://site.example.com/shop/result",
	})
	require.NoError(t, err)

	u, err := url.Parse(result.PayURL)
	require.NoError(t, err)
	assert.Equal(t, "/submit.php", u.Path)

	q := u.Query()
	assert.Equal(t, "1001", q.Get("pid"))
	assert.Equal(t, "SW1", q.Get("out_trade_no"))
	assert.Equal(t, "9.90", q.Get("money"))
	assert.Equal(t, "MD5", q.Get("sign_type"))
	assert.NotEmpty(t, q.Get("sign"))
}

func TestEpayVerifyNotify(t *testing.T) {
	gw := NewEpayGateway(staticConfig(map[string]string{
		"api_url": "https://pay.example.com", "pid": "1001", "key": "KEY",
	}))

	params := map[string]string{
		"pid":          "1001",
		"out_trade_no": "SW1",
		"trade_no":     "E10001",
		"money":        "9.90",
		"trade_status": "TRADE_SUCCESS",
	}
	params["sign"] = epaySign(params, "KEY")
	params["sign_type"] = "MD5"

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
	assert.Equal(t, "SW1", notify.OrderNo)
	assert.Equal(t, "E10001", notify.ProviderTradeNo)
	assert.Equal(t, "9.9", notify.Amount.String())
}

func TestEpayVerifyNotifyBadSign(t *testing.T) {
	gw := NewEpayGateway(staticConfig(map[string]string{
		"api_url": "https://pay.example.com", "pid": "1001", "key": "KEY",
	}))

	params := map[string]string{
		"out_trade_no": "SW1",
		"money":        "9.90",
		"trade_status": "TRADE_SUCCESS",
	}
	params["sign"] = epaySign(params, "KEY")
	params["money"] = "0.01"

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)
}

func TestEpayNotifyUnpaidStatus(t *testing.T) {
	gw := NewEpayGateway(staticConfig(map[string]string{
		"api_url": "https://pay.example.com", "pid": "1001", "key": "KEY",
	}))

	params := map[string]string{
		"out_trade_no": "SW1",
		"money":        "9.90",
		"trade_status": "WAIT_BUYER_PAY",
	}
	params["sign"] = epaySign(params, "KEY")

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, notify.Succeeded)
}

func TestEpayAck(t *testing.T) {
	gw := NewEpayGateway(staticConfig(nil))

	_, body := gw.SuccessAck()
	assert.Equal(t, "success", body)

	_, body = gw.FailAck("签名错误")
	assert.Equal(t, "fail: 签名错误", body)
}
