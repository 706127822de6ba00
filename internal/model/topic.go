package model

import (
	"time"
)

// 话题状态
const (
	TopicStatusOpen   = 0 // 开放投票
	TopicStatusClosed = 1 // 已关闭
)

// Topic 热门话题模型，按票数排序展示
type Topic struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Votes       int64     `db:"votes" json:"votes"`
	Status      int       `db:"status" json:"status"` // 0: 开放, 1: 已关闭
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
