package payment

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// EpayGateway 易支付聚合
// 经典V2接口：GET跳转提交 + MD5签名，异步通知为表单/查询参数
type EpayGateway struct {
	config ConfigGetter
}

// NewEpayGateway 创建易支付适配器
func NewEpayGateway(config ConfigGetter) *EpayGateway {
	return &EpayGateway{config: config}
}

// Code 渠道代码
func (g *EpayGateway) Code() string { return CodeEpay }

// epaySign 易支付签名：参数按键名升序拼接a=b&c=d后直接追加商户密钥，
// 跳过空值、sign和sign_type，MD5小写
func epaySign(params map[string]string, key string) string {
	return md5Hex(sortedQueryString(params, "sign", "sign_type") + key)
}

// CreatePayment 构造易支付提交链接
// 易支付是页面跳转式接口，不需要服务端预下单
func (g *EpayGateway) CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	apiURL, pid, key := cfg["api_url"], cfg["pid"], cfg["key"]
	if apiURL == "" || pid == "" || key == "" {
		return nil, errors.New("易支付配置不完整")
	}

	// 聚合通道类型（alipay/wxpay/qqpay），未配置时由收银台让用户选择
	payType := cfg["type"]

	params := map[string]string{
		"pid":          pid,
		"type":         payType,
		"out_trade_no": req.OrderNo,
		"notify_url":   req.NotifyURL,
		"return_url":   req.ReturnURL,
		"name":         req.Subject,
		"money":        req.Amount.StringFixed(2),
	}
	sign := epaySign(params, key)

	values := url.Values{}
	for k, v := range params {
		if v != "" {
			values.Set(k, v)
		}
	}
	values.Set("sign", sign)
	values.Set("sign_type", "MD5")

	return &CreateResult{
		PayURL: strings.TrimRight(apiURL, "/") + "/submit.php?" + values.Encode(),
	}, nil
}

// VerifyNotify 验证易支付异步通知
func (g *EpayGateway) VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	key := cfg["key"]
	if key == "" {
		return nil, errors.New("易支付配置不完整")
	}

	params, err := formToMap(r)
	if err != nil {
		return nil, err
	}

	if params["sign"] == "" || epaySign(params, key) != params["sign"] {
		return nil, errors.New("通知签名验证失败")
	}

	return &NotifyResult{
		OrderNo:         params["out_trade_no"],
		ProviderTradeNo: params["trade_no"],
		Amount:          parseAmount(params["money"]),
		Succeeded:       params["trade_status"] == "TRADE_SUCCESS",
		Raw:             params,
	}, nil
}

// SuccessAck 易支付要求返回纯文本success
func (g *EpayGateway) SuccessAck() (string, string) {
	return "text/plain; charset=utf-8", "success"
}

// FailAck 易支付失败确认
func (g *EpayGateway) FailAck(msg string) (string, string) {
	return "text/plain; charset=utf-8", "fail: " + msg
}
