package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// XunhupayGateway 迅虎支付聚合
// POST表单下单，hash为参数排序拼接后追加appsecret的MD5
type XunhupayGateway struct {
	config ConfigGetter
	client *http.Client
}

// NewXunhupayGateway 创建迅虎支付适配器
func NewXunhupayGateway(config ConfigGetter) *XunhupayGateway {
	return &XunhupayGateway{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Code 渠道代码
func (g *XunhupayGateway) Code() string { return CodeXunhupay }

// xunhupayHash 迅虎签名：非空参数按键名升序拼接k=v&k=v后直接追加appsecret，MD5小写
func xunhupayHash(params map[string]string, appSecret string) string {
	return md5Hex(sortedQueryString(params, "hash") + appSecret)
}

// xunhupayResponse 下单响应
type xunhupayResponse struct {
	ErrCode   int    `json:"errcode"`
	ErrMsg    string `json:"errmsg"`
	URL       string `json:"url"`
	URLQRCode string `json:"url_qrcode"`
	OrderID   string `json:"oderid"` // 迅虎接口返回字段就是这个拼法
}

// CreatePayment 调用迅虎下单接口
func (g *XunhupayGateway) CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	apiURL, appID, appSecret := cfg["api_url"], cfg["app_id"], cfg["app_secret"]
	if apiURL == "" || appID == "" || appSecret == "" {
		return nil, errors.New("迅虎支付配置不完整")
	}

	params := map[string]string{
		"version":        "1.1",
		"appid":          appID,
		"trade_order_id": req.OrderNo,
		"total_fee":      req.Amount.StringFixed(2),
		"title":          req.Subject,
		"time":           fmt.Sprintf("%d", time.Now().Unix()),
		"notify_url":     req.NotifyURL,
		"return_url":     req.ReturnURL,
		"nonce_str":      nonceStr(16),
	}
	params["hash"] = xunhupayHash(params, appSecret)

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}

	endpoint := strings.TrimRight(apiURL, "/") + "/payment/do.html"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求迅虎下单失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var result xunhupayResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("解析迅虎响应失败: %w", err)
	}
	if result.ErrCode != 0 {
		return nil, fmt.Errorf("迅虎下单失败: %s", result.ErrMsg)
	}

	return &CreateResult{
		PayURL:     result.URL,
		QRCode:     result.URLQRCode,
		ProviderID: result.OrderID,
	}, nil
}

// VerifyNotify 验证迅虎异步通知
func (g *XunhupayGateway) VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	appSecret := cfg["app_secret"]
	if appSecret == "" {
		return nil, errors.New("迅虎支付配置不完整")
	}

	params, err := formToMap(r)
	if err != nil {
		return nil, err
	}

	if params["hash"] == "" || xunhupayHash(params, appSecret) != params["hash"] {
		return nil, errors.New("通知签名验证失败")
	}

	// status为OD表示已支付
	return &NotifyResult{
		OrderNo:         params["trade_order_id"],
		ProviderTradeNo: params["transaction_id"],
		Amount:          parseAmount(params["total_fee"]),
		Succeeded:       params["status"] == "OD",
		Raw:             params,
	}, nil
}

// SuccessAck 迅虎要求返回纯文本success
func (g *XunhupayGateway) SuccessAck() (string, string) {
	return "text/plain; charset=utf-8", "success"
}

// FailAck 迅虎失败确认
func (g *XunhupayGateway) FailAck(msg string) (string, string) {
	return "text/plain; charset=utf-8", "fail"
}
