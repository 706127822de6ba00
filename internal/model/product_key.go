package model

import (
	"database/sql"
	"time"
)

// 卡密状态
const (
	KeyStatusAvailable = 0 // 可用
	KeyStatusSold      = 1 // 已售出
	KeyStatusUsed      = 2 // 已使用
	KeyStatusExpired   = 3 // 已过期
)

// ProductKey 卡密模型
// 管理员预先导入卡密池，每笔已支付订单独占分配一条
type ProductKey struct {
	ID        int64          `db:"id" json:"id"`
	ProductID int64          `db:"product_id" json:"product_id"`
	Secret    string         `db:"secret" json:"secret"`
	Status    int            `db:"status" json:"status"` // 0: 可用, 1: 已售出, 2: 已使用, 3: 已过期
	OrderID   sql.NullInt64  `db:"order_id" json:"order_id,omitempty"`
	UserID    sql.NullInt64  `db:"user_id" json:"user_id,omitempty"`
	ExpiresAt sql.NullTime   `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	Remark    sql.NullString `db:"remark" json:"remark,omitempty"`
}
