package payment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSortedQueryString(t *testing.T) {
	params := map[string]string{
		"b":    "2",
		"a":    "1",
		"zero": "",
		"c":    "3",
	}

	// 键名升序拼接，空值跳过
	assert.Equal(t, "a=1&b=2&c=3", sortedQueryString(params))

	// 排除键不参与拼接
	assert.Equal(t, "a=1&c=3", sortedQueryString(params, "b"))
	assert.Equal(t, "a=1", sortedQueryString(params, "b", "c"))
}

func TestParseAmount(t *testing.T) {
	assert.True(t, parseAmount("12.50").Equal(decimal.RequireFromString("12.5")))
	assert.True(t, parseAmount("").IsZero())
	assert.True(t, parseAmount("abc").IsZero())
}

func TestGetChannelDef(t *testing.T) {
	def := GetChannelDef(CodeWechat)
	assert.NotNil(t, def)
	assert.Equal(t, "微信支付", def.Name)
	assert.Contains(t, def.RequiredFields, "api_key")

	assert.Nil(t, GetChannelDef("paypal"))
}

func TestNonceStr(t *testing.T) {
	s := nonceStr(32)
	assert.Len(t, s, 32)
	assert.NotEqual(t, s, nonceStr(32))
}
