package payment

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genAlipayKeys 生成一对测试用RSA密钥的PEM
func genAlipayKeys(t *testing.T) (privatePEM, publicPEM string, key *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM = string(pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubBytes,
	}))
	return privatePEM, publicPEM, key
}

func TestParsePrivateKeyFormats(t *testing.T) {
	_, _, key := genAlipayKeys(t)

	// PKCS1
	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	parsed, err := parsePrivateKey(string(pkcs1))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	// PKCS8
	pkcs8Bytes, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8 := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: pkcs8Bytes,
	})
	parsed, err = parsePrivateKey(string(pkcs8))
	require.NoError(t, err)
	assert.Equal(t, key.N, parsed.N)

	_, err = parsePrivateKey("not a pem")
	assert.Error(t, err)
}

func TestRSA2SignVerify(t *testing.T) {
	_, _, key := genAlipayKeys(t)

	sign, err := rsa2Sign("a=1&b=2", key)
	require.NoError(t, err)
	require.NoError(t, rsa2Verify("a=1&b=2", sign, &key.PublicKey))
	assert.Error(t, rsa2Verify("a=1&b=3", sign, &key.PublicKey))
}

func TestAlipayCreatePayment(t *testing.T) {
	privatePEM, publicPEM, _ := genAlipayKeys(t)
	gw := NewAlipayGateway(staticConfig(map[string]string{
		"app_id": "2021000100000001", "private_key": privatePEM, "public_key": publicPEM,
	}))

	result, err := gw.CreatePayment(context.Background(), &CreateRequest{
		OrderNo:   "SW1",
		Subject:   "会员月卡",
		Amount:    decimal.RequireFromString("30"),
		NotifyURL: "https://site.example.com/api/v1/pay/notify/alipay",
		ReturnURL: "https://site.example.com/shop/result",
	})
	require.NoError(t, err)

	u, err := url.Parse(result.PayURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "alipay.trade.page.pay", q.Get("method"))
	assert.Equal(t, "RSA2", q.Get("sign_type"))
	assert.NotEmpty(t, q.Get("sign"))
	assert.Contains(t, q.Get("biz_content"), `"out_trade_no":"SW1"`)
	assert.Contains(t, q.Get("biz_content"), `"total_amount":"30.00"`)
}

func alipaySignedForm(t *testing.T, params map[string]string, key *rsa.PrivateKey) url.Values {
	t.Helper()
	sign, err := rsa2Sign(alipayVerifyString(params), key)
	require.NoError(t, err)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("sign", sign)
	values.Set("sign_type", "RSA2")
	return values
}

func TestAlipayVerifyNotify(t *testing.T) {
	privatePEM, publicPEM, key := genAlipayKeys(t)
	gw := NewAlipayGateway(staticConfig(map[string]string{
		"app_id": "2021000100000001", "private_key": privatePEM, "public_key": publicPEM,
	}))

	params := map[string]string{
		"out_trade_no": "SW1",
		"trade_no":     "2026083022001",
		"total_amount": "30.00",
		"trade_status": "TRADE_SUCCESS",
	}
	form := alipaySignedForm(t, params, key)

	r := httptest.NewRequest("POST", "/", nil)
	r.URL.RawQuery = form.Encode()
	notify, err := gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
	assert.Equal(t, "SW1", notify.OrderNo)
	assert.Equal(t, "2026083022001", notify.ProviderTradeNo)
	assert.Equal(t, "30", notify.Amount.String())

	// TRADE_FINISHED同样算成功
	params["trade_status"] = "TRADE_FINISHED"
	form = alipaySignedForm(t, params, key)
	r = httptest.NewRequest("POST", "/", nil)
	r.URL.RawQuery = form.Encode()
	notify, err = gw.VerifyNotify(context.Background(), r)
	require.NoError(t, err)
	assert.True(t, notify.Succeeded)
}

func TestAlipayVerifyNotifyTampered(t *testing.T) {
	privatePEM, publicPEM, key := genAlipayKeys(t)
	gw := NewAlipayGateway(staticConfig(map[string]string{
		"app_id": "2021000100000001", "private_key": privatePEM, "public_key": publicPEM,
	}))

	params := map[string]string{
		"out_trade_no": "SW1",
		"total_amount": "30.00",
		"trade_status": "TRADE_SUCCESS",
	}
	form := alipaySignedForm(t, params, key)
	// 签名后篡改金额
	form.Set("total_amount", "0.01")

	r := httptest.NewRequest("POST", "/", nil)
	r.URL.RawQuery = form.Encode()
	_, err := gw.VerifyNotify(context.Background(), r)
	assert.Error(t, err)
}
