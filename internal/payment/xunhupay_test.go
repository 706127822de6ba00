package payment

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXunhupayHash(t *testing.T) {
	params := map[string]string{
		"appid":          "2001",
		"trade_order_id": "SW1",
		"total_fee":      "5.00",
	}
	hash := xunhupayHash(params, "appsecret")

	// MD5小写，hash键本身不参与签名
	assert.Len(t, hash, 32)
	assert.Equal(t, strings.ToLower(hash), hash)
	params["hash"] = hash
	assert.Equal(t, hash, xunhupayHash(params, "appsecret"))

	assert.NotEqual(t, hash, xunhupayHash(params, "other"))
}

func TestXunhupayVerifyNotify(t *testing.T) {
	gw := NewXunhupayGateway(staticConfig(map[string]string{
		"api_url": "https://api.xunhupay.com", "app_id": "2001", "app_secret": "appsecret",
	}))

	params := map[string]string{
		"appid":          "2001",
		"trade_order_id": "SW1",
		"transaction_id": "X10001",
		"total_fee":      "5.00",
		"status":         "OD",
	}
	params["hash"] = xunhupayHash(params, "appsecret")

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
	assert.Equal(t, "SW1", notify.OrderNo)
	assert.Equal(t, "X10001", notify.ProviderTradeNo)
	assert.Equal(t, "5", notify.Amount.String())
}

func TestXunhupayVerifyNotifyBadHash(t *testing.T) {
	gw := NewXunhupayGateway(staticConfig(map[string]string{
		"api_url": "https://api.xunhupay.com", "app_id": "2001", "app_secret": "appsecret",
	}))

	params := map[string]string{
		"trade_order_id": "SW1",
		"total_fee":      "5.00",
		"status":         "OD",
	}
	params["hash"] = xunhupayHash(params, "appsecret")
	params["total_fee"] = "0.01"

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)
}

func TestXunhupayNotifyNonPaidStatus(t *testing.T) {
	gw := NewXunhupayGateway(staticConfig(map[string]string{
		"api_url": "https://api.xunhupay.com", "app_id": "2001", "app_secret": "appsecret",
	}))

	// 状态不是OD时验签通过但不算支付成功
	params := map[string]string{
		"trade_order_id": "SW1",
		"total_fee":      "5.00",
		"status":         "CD",
	}
	params["hash"] = xunhupayHash(params, "appsecret")

	r := httptest.NewRequest("POST", "/", epayForm(params))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, notify.Succeeded)
}
