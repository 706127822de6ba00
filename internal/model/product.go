package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品类型
const (
	ProductTypeCardKey    = "card_key"   // 卡密商品，付款后发一条卡密
	ProductTypeMembership = "membership" // 会员商品，付款后延长会员时长
)

// Product 商品模型
type Product struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Type         string          `db:"type" json:"type"` // card_key / membership
	DurationDays int             `db:"duration_days" json:"duration_days"`
	Stock        int64           `db:"stock" json:"stock"` // 卡密商品为可用卡密数量
	IsActive     bool            `db:"is_active" json:"is_active"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}
