package payment

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// 渠道代码
const (
	CodeWechat   = "wechat"   // 微信支付（Native扫码）
	CodeAlipay   = "alipay"   // 支付宝（电脑网站支付）
	CodeEpay     = "epay"     // 易支付聚合
	CodeXunhupay = "xunhupay" // 迅虎支付聚合
	CodeTest     = "test"     // 本地测试支付
)

// ChannelDef 渠道静态定义
// 可用渠道集合与各渠道必填配置项写死在代码里，
// 运行时的开关和配置值存在payment_channels表
type ChannelDef struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	RequiredFields []string `json:"required_fields"`
}

// ChannelDefs 所有支持的支付渠道
var ChannelDefs = []ChannelDef{
	{Code: CodeWechat, Name: "微信支付", RequiredFields: []string{"app_id", "mch_id", "api_key"}},
	{Code: CodeAlipay, Name: "支付宝", RequiredFields: []string{"app_id", "private_key", "public_key"}},
	{Code: CodeEpay, Name: "易支付", RequiredFields: []string{"api_url", "pid", "key"}},
	{Code: CodeXunhupay, Name: "迅虎支付", RequiredFields: []string{"api_url", "app_id", "app_secret"}},
	{Code: CodeTest, Name: "测试支付", RequiredFields: []string{}},
}

// GetChannelDef 根据渠道代码获取静态定义
func GetChannelDef(code string) *ChannelDef {
	for i := range ChannelDefs {
		if ChannelDefs[i].Code == code {
			return &ChannelDefs[i]
		}
	}
	return nil
}

// ConfigGetter 获取渠道配置
// 支付服务在这里合并数据库配置与环境变量回退，适配器每次调用时取最新值
type ConfigGetter func(ctx context.Context) (map[string]string, error)

// CreateRequest 创建支付请求
type CreateRequest struct {
	OrderNo   string          // 商户订单号
	Subject   string          // 商品名称
	Amount    decimal.Decimal // 金额，单位元
	ClientIP  string          // 买家IP
	NotifyURL string          // 异步通知地址
	ReturnURL string          // 支付完成跳转地址
}

// CreateResult 创建支付结果
type CreateResult struct {
	PayURL     string `json:"pay_url,omitempty"`    // 跳转支付链接
	QRCode     string `json:"qr_code,omitempty"`    // 扫码支付内容
	ProviderID string `json:"provider_id,omitempty"` // 供应商侧单号（如有）
}

// NotifyResult 异步通知验签后的归一化结果
type NotifyResult struct {
	OrderNo         string            // 商户订单号
	ProviderTradeNo string            // 供应商交易号
	Amount          decimal.Decimal   // 实付金额，单位元
	Succeeded       bool              // 是否支付成功
	Raw             map[string]string // 原始参数
}

// Gateway 支付网关适配器接口
// 每个供应商一个实现：构造签名请求、调用供应商接口、解析供应商
// 各自的响应格式，并验证异步通知签名
type Gateway interface {
	Code() string
	CreatePayment(ctx context.Context, req *CreateRequest) (*CreateResult, error)
	VerifyNotify(ctx context.Context, r *http.Request) (*NotifyResult, error)
	// SuccessAck / FailAck 返回供应商要求的确认响应（Content-Type与响应体）
	SuccessAck() (string, string)
	FailAck(msg string) (string, string)
}

// md5Hex 计算MD5十六进制小写
func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// sortedQueryString 按键名ASCII升序拼接k=v&k=v，跳过空值和排除键
func sortedQueryString(params map[string]string, exclude ...string) string {
	excluded := make(map[string]bool, len(exclude))
	for _, k := range exclude {
		excluded[k] = true
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" || excluded[k] {
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

// parseAmount 解析供应商回传的金额字符串，解析失败按0处理
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// nonceStr 生成随机字符串
func nonceStr(length int) string {
	b := make([]byte, length/2)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// formToMap 将表单参数展平成map，多值参数只取第一个
func formToMap(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	params := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	return params, nil
}
