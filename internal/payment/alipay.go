package payment

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const alipayGatewayURL = "https://openapi.alipay.com/gateway.do"

// AlipayGateway 支付宝电脑网站支付
// RSA2（SHA256WithRSA）签名，异步通知为表单参数
type AlipayGateway struct {
	config ConfigGetter
}

// NewAlipayGateway 创建支付宝适配器
func NewAlipayGateway(config ConfigGetter) *AlipayGateway {
	return &AlipayGateway{config: config}
}

// Code 渠道代码
func (g *AlipayGateway) Code() string { return CodeAlipay }

// parsePrivateKey 解析商户RSA私钥，兼容PKCS1与PKCS8两种PEM格式
func parsePrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("无法解析私钥PEM")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("解析私钥失败: %w", err)
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("私钥不是RSA类型")
	}
	return key, nil
}

// parsePublicKey 解析支付宝RSA公钥
func parsePublicKey(pemStr string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, errors.New("无法解析公钥PEM")
	}
	keyAny, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("解析公钥失败: %w", err)
	}
	key, ok := keyAny.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("公钥不是RSA类型")
	}
	return key, nil
}

// rsa2Sign 对待签名串做SHA256WithRSA签名，返回base64
func rsa2Sign(content string, key *rsa.PrivateKey) (string, error) {
	digest := sha256.Sum256([]byte(content))
	sig, err := rsa.SignPKCS1v15(nil, key, crypto.SHA256, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// rsa2Verify 校验SHA256WithRSA签名
func rsa2Verify(content, sign string, key *rsa.PublicKey) error {
	sig, err := base64.StdEncoding.DecodeString(sign)
	if err != nil {
		return err
	}
	digest := sha256.Sum256([]byte(content))
	return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig)
}

// CreatePayment 构造电脑网站支付跳转链接
// 页面跳转类接口不发服务端请求，签名后的参数直接拼成网关URL
func (g *AlipayGateway) CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	appID := cfg["app_id"]
	if appID == "" || cfg["private_key"] == "" {
		return nil, errors.New("支付宝配置不完整")
	}

	privateKey, err := parsePrivateKey(cfg["private_key"])
	if err != nil {
		return nil, err
	}

	bizContent, err := json.Marshal(map[string]string{
		"out_trade_no": req.OrderNo,
		"total_amount": req.Amount.StringFixed(2),
		"subject":      req.Subject,
		"product_code": "FAST_INSTANT_TRADE_PAY",
	})
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"app_id":      appID,
		"method":      "alipay.trade.page.pay",
		"charset":     "utf-8",
		"sign_type":   "RSA2",
		"timestamp":   time.Now().Format("2006-01-02 15:04:05"),
		"version":     "1.0",
		"notify_url":  req.NotifyURL,
		"return_url":  req.ReturnURL,
		"biz_content": string(bizContent),
	}

	sign, err := rsa2Sign(sortedQueryString(params, "sign"), privateKey)
	if err != nil {
		return nil, fmt.Errorf("支付宝签名失败: %w", err)
	}
	params["sign"] = sign

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	return &CreateResult{
		PayURL: alipayGatewayURL + "?" + values.Encode(),
	}, nil
}

// VerifyNotify 验证支付宝异步通知
func (g *AlipayGateway) VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	if cfg["public_key"] == "" {
		return nil, errors.New("支付宝配置不完整")
	}

	publicKey, err := parsePublicKey(cfg["public_key"])
	if err != nil {
		return nil, err
	}

	params, err := formToMap(r)
	if err != nil {
		return nil, err
	}

	sign := params["sign"]
	if sign == "" {
		return nil, errors.New("通知缺少签名")
	}

	// 验签串要排除sign和sign_type，但空值参与排序前已被过滤，
	// 支付宝的验签规则是跳过空值的
	content := alipayVerifyString(params)
	if err := rsa2Verify(content, sign, publicKey); err != nil {
		return nil, fmt.Errorf("通知签名验证失败: %w", err)
	}

	tradeStatus := params["trade_status"]
	succeeded := tradeStatus == "TRADE_SUCCESS" || tradeStatus == "TRADE_FINISHED"

	amount := parseAmount(params["total_amount"])

	return &NotifyResult{
		OrderNo:         params["out_trade_no"],
		ProviderTradeNo: params["trade_no"],
		Amount:          amount,
		Succeeded:       succeeded,
		Raw:             params,
	}, nil
}

// alipayVerifyString 构造支付宝验签原串，排除sign与sign_type
func alipayVerifyString(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if k == "sign" || k == "sign_type" || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return strings.Join(pairs, "&")
}

// SuccessAck 支付宝要求返回纯文本success
func (g *AlipayGateway) SuccessAck() (string, string) {
	return "text/plain; charset=utf-8", "success"
}

// FailAck 支付宝失败确认
func (g *AlipayGateway) FailAck(msg string) (string, string) {
	return "text/plain; charset=utf-8", "fail"
}
