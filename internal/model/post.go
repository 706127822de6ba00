package model

import (
	"database/sql"
	"time"
)

// Post 博客文章模型
type Post struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Category    string       `db:"category" json:"category"`
	Tags        string       `db:"tags" json:"tags"` // 逗号分隔
	Content     string       `db:"content" json:"content"`
	Views       int64        `db:"views" json:"views"`
	IsPublished bool         `db:"is_published" json:"is_published"`
	PublishDate sql.NullTime `db:"publish_date" json:"publish_date,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// PostSummary 文章列表项，不含正文
type PostSummary struct {
	ID          int64        `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Category    string       `db:"category" json:"category"`
	Tags        string       `db:"tags" json:"tags"`
	Views       int64        `db:"views" json:"views"`
	PublishDate sql.NullTime `db:"publish_date" json:"publish_date,omitempty"`
}

// PaginatedPosts 分页文章列表
type PaginatedPosts struct {
	Total int64         `json:"total"`
	Items []PostSummary `json:"items"`
}
