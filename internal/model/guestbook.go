package model

import (
	"database/sql"
	"time"
)

// Message 留言板留言模型
type Message struct {
	ID        int64          `db:"id" json:"id"`
	Nickname  string         `db:"nickname" json:"nickname"`
	Email     string         `db:"email" json:"-"` // 邮箱不对外展示
	Content   string         `db:"content" json:"content"`
	Reply     sql.NullString `db:"reply" json:"reply,omitempty"`
	IsVisible bool           `db:"is_visible" json:"is_visible"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	RepliedAt sql.NullTime   `db:"replied_at" json:"replied_at,omitempty"`
}

// PaginatedMessages 分页留言列表
type PaginatedMessages struct {
	Total int64     `json:"total"`
	Items []Message `json:"items"`
}
