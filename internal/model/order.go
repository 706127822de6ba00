package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// 订单状态
const (
	OrderStatusPending   = 0 // 待支付
	OrderStatusPaid      = 1 // 已支付
	OrderStatusCompleted = 2 // 已完成
	OrderStatusCancelled = 3 // 已取消
	OrderStatusRefunded  = 4 // 已退款
)

// Order 订单模型
type Order struct {
	ID              int64           `db:"id" json:"id"`
	OrderNo         string          `db:"order_no" json:"order_no"`
	UserID          int64           `db:"user_id" json:"user_id"`
	ProductID       int64           `db:"product_id" json:"product_id"`
	ProductName     string          `db:"product_name" json:"product_name"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	Status          int             `db:"status" json:"status"` // 0: 待支付, 1: 已支付, 2: 已完成, 3: 已取消, 4: 已退款
	PayChannel      string          `db:"pay_channel" json:"pay_channel"`
	ProviderTradeNo sql.NullString  `db:"provider_trade_no" json:"provider_trade_no,omitempty"`
	ProductKey      sql.NullString  `db:"product_key" json:"product_key,omitempty"`
	Remark          string          `db:"remark" json:"remark"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	PaidAt          sql.NullTime    `db:"paid_at" json:"paid_at,omitempty"`
}

// IsTerminal 订单是否处于终态
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled || o.Status == OrderStatusRefunded
}

// PaginatedOrders 分页订单列表
type PaginatedOrders struct {
	Total int64   `json:"total"`
	Items []Order `json:"items"`
}
