package model

import (
	"time"
)

// PaymentChannel 支付渠道模型
// 可用渠道集合与必填配置项在internal/payment中静态定义，
// 这里只存每个渠道的运行时开关与配置
type PaymentChannel struct {
	ID        int64     `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	Config    string    `db:"config" json:"-"` // JSON键值对，含商户号密钥等敏感信息
	SortOrder int       `db:"sort_order" json:"sort_order"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
