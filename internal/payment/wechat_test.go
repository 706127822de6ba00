package payment

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticConfig(cfg map[string]string) ConfigGetter {
	return func(ctx context.Context) (map[string]string, error) {
		return cfg, nil
	}
}

func TestWechatSign(t *testing.T) {
	params := map[string]string{
		"appid":        "wx123",
		"mch_id":       "10001",
		"out_trade_no": "SW20260101",
	}
	sign := wechatSign(params, "secret")

	// MD5大写，且sign键本身不参与签名
	assert.Len(t, sign, 32)
	assert.Equal(t, strings.ToUpper(sign), sign)
	params["sign"] = sign
	assert.Equal(t, sign, wechatSign(params, "secret"))

	// 密钥不同签名不同
	assert.NotEqual(t, sign, wechatSign(params, "other"))
}

func TestParseWechatXML(t *testing.T) {
	params := map[string]string{
		"return_code":  "SUCCESS",
		"out_trade_no": "SW1",
		"total_fee":    "100",
	}
	parsed, err := parseWechatXML([]byte(wechatXML(params)))
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", parsed["return_code"])
	assert.Equal(t, "SW1", parsed["out_trade_no"])
	assert.Equal(t, "100", parsed["total_fee"])
}

func TestWechatVerifyNotify(t *testing.T) {
	gw := NewWechatGateway(staticConfig(map[string]string{
		"app_id": "wx123", "mch_id": "10001", "api_key": "secret",
	}))

	params := map[string]string{
		"return_code":    "SUCCESS",
		"result_code":    "SUCCESS",
		"out_trade_no":   "SW20260101ABCD1234",
		"transaction_id": "4200001",
		"total_fee":      "1250",
	}
	params["sign"] = wechatSign(params, "secret")

	r := httptest.NewRequest("POST", "/api/v1/pay/notify/wechat", strings.NewReader(wechatXML(params)))
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
	assert.Equal(t, "SW20260101ABCD1234", notify.OrderNo)
	assert.Equal(t, "4200001", notify.ProviderTradeNo)
	// 分转元
	assert.Equal(t, "12.5", notify.Amount.String())
}

func TestWechatVerifyNotifyBadSign(t *testing.T) {
	gw := NewWechatGateway(staticConfig(map[string]string{
		"app_id": "wx123", "mch_id": "10001", "api_key": "secret",
	}))

	params := map[string]string{
		"return_code":  "SUCCESS",
		"result_code":  "SUCCESS",
		"out_trade_no": "SW1",
		"total_fee":    "100",
	}
	params["sign"] = wechatSign(params, "secret")
	// 改金额后签名失效
	params["total_fee"] = "1"

	r := httptest.NewRequest("POST", "/", strings.NewReader(wechatXML(params)))
	_, err := gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)

	// 缺签名同样拒绝
	delete(params, "sign")
	r = httptest.NewRequest("POST", "/", strings.NewReader(wechatXML(params)))
	_, err = gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)
}

func TestWechatAck(t *testing.T) {
	gw := NewWechatGateway(staticConfig(nil))

	contentType, body := gw.SuccessAck()
	assert.Equal(t, "text/xml; charset=utf-8", contentType)
	assert.Equal(t, "<xml><return_code><![CDATA[SUCCESS]]></return_code><return_msg><![CDATA[OK]]></return_msg></xml>", body)

	_, body = gw.FailAck("签名错误")
	assert.Contains(t, body, "<![CDATA[FAIL]]>")
	assert.Contains(t, body, "签名错误")
}
