package payment

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const wechatUnifiedOrderURL = "https://api.mch.weixin.qq.com/pay/unifiedorder"

// WechatGateway 微信支付Native扫码
// 走V2接口：XML报文 + MD5签名
type WechatGateway struct {
	config ConfigGetter
	client *http.Client
}

// NewWechatGateway 创建微信支付适配器
func NewWechatGateway(config ConfigGetter) *WechatGateway {
	return &WechatGateway{
		config: config,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Code 渠道代码
func (g *WechatGateway) Code() string { return CodeWechat }

// wechatSign 微信V2签名：参数按键名ASCII升序拼接后追加&key=密钥，MD5后转大写
func wechatSign(params map[string]string, apiKey string) string {
	raw := sortedQueryString(params, "sign") + "&key=" + apiKey
	return strings.ToUpper(md5Hex(raw))
}

// wechatXML 将参数编码为微信要求的XML报文
func wechatXML(params map[string]string) string {
	var buf bytes.Buffer
	buf.WriteString("<xml>")
	for k, v := range params {
		buf.WriteString(fmt.Sprintf("<%s><![CDATA[%s]]></%s>", k, v, k))
	}
	buf.WriteString("</xml>")
	return buf.String()
}

// parseWechatXML 将微信XML报文解析为扁平map
func parseWechatXML(data []byte) (map[string]string, error) {
	params := make(map[string]string)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	var key string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local != "xml" {
				key = t.Name.Local
			}
		case xml.CharData:
			if key != "" {
				params[key] = string(t)
			}
		case xml.EndElement:
			key = ""
		}
	}
	return params, nil
}

// CreatePayment 调用统一下单接口，返回扫码链接
func (g *WechatGateway) CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	appID, mchID, apiKey := cfg["app_id"], cfg["mch_id"], cfg["api_key"]
	if appID == "" || mchID == "" || apiKey == "" {
		return nil, errors.New("微信支付配置不完整")
	}

	// 微信金额单位是分
	totalFee := req.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := map[string]string{
		"appid":            appID,
		"mch_id":           mchID,
		"nonce_str":        nonceStr(32),
		"body":             req.Subject,
		"out_trade_no":     req.OrderNo,
		"total_fee":        fmt.Sprintf("%d", totalFee),
		"spbill_create_ip": req.ClientIP,
		"notify_url":       req.NotifyURL,
		"trade_type":       "NATIVE",
	}
	params["sign"] = wechatSign(params, apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, wechatUnifiedOrderURL,
		strings.NewReader(wechatXML(params)))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("请求微信统一下单失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result, err := parseWechatXML(body)
	if err != nil {
		return nil, fmt.Errorf("解析微信响应失败: %w", err)
	}

	if result["return_code"] != "SUCCESS" {
		return nil, fmt.Errorf("微信下单失败: %s", result["return_msg"])
	}
	if result["result_code"] != "SUCCESS" {
		return nil, fmt.Errorf("微信下单被拒绝: %s", result["err_code_des"])
	}

	// 响应签名校验，防止网关被中间人伪造
	if wechatSign(result, apiKey) != result["sign"] {
		return nil, errors.New("微信响应签名验证失败")
	}

	return &CreateResult{
		QRCode:     result["code_url"],
		ProviderID: result["prepay_id"],
	}, nil
}

// VerifyNotify 验证微信异步通知
func (g *WechatGateway) VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error) {
	cfg, err := g.config(ctx)
	if err != nil {
		return nil, err
	}
	apiKey := cfg["api_key"]
	if apiKey == "" {
		return nil, errors.New("微信支付配置不完整")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	params, err := parseWechatXML(body)
	if err != nil {
		return nil, fmt.Errorf("解析通知报文失败: %w", err)
	}

	// 先验签再看业务结果，签名不过的一律拒绝
	if params["sign"] == "" || wechatSign(params, apiKey) != params["sign"] {
		return nil, errors.New("通知签名验证失败")
	}

	succeeded := params["return_code"] == "SUCCESS" && params["result_code"] == "SUCCESS"

	// total_fee是分，归一化成元
	amount := decimal.Zero
	if fee := params["total_fee"]; fee != "" {
		if d, err := decimal.NewFromString(fee); err == nil {
			amount = d.Div(decimal.NewFromInt(100))
		}
	}

	return &NotifyResult{
		OrderNo:         params["out_trade_no"],
		ProviderTradeNo: params["transaction_id"],
		Amount:          amount,
		Succeeded:       succeeded,
		Raw:             params,
	}, nil
}

// SuccessAck 微信要求的成功确认报文
func (g *WechatGateway) SuccessAck() (string, string) {
	return "text/xml; charset=utf-8",
		"<xml><return_code><![CDATA[SUCCESS]]></return_code><return_msg><![CDATA[OK]]></return_msg></xml>"
}

// FailAck 微信要求的失败确认报文
func (g *WechatGateway) FailAck(msg string) (string, string) {
	return "text/xml; charset=utf-8",
		fmt.Sprintf("<xml><return_code><![CDATA[FAIL]]></return_code><return_msg><![CDATA[%s]]></return_msg></xml>", msg)
}
