package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// TopicRepository 热门话题存储库
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository 创建热门话题存储库实例
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// ListTopicsByVotes 按票数降序获取话题列表
func (r *TopicRepository) ListTopicsByVotes(ctx context.Context) ([]model.Topic, error) {
	var topics []model.Topic
	query := `SELECT * FROM topics ORDER BY votes DESC, created_at DESC`
	err := r.db.SelectContext(ctx, &topics, query)
	return topics, err
}

// GetTopicByID 根据ID获取话题
func (r *TopicRepository) GetTopicByID(ctx context.Context, id int64) (*model.Topic, error) {
	var topic model.Topic
	err := r.db.GetContext(ctx, &topic, `SELECT * FROM topics WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

// CreateTopic 创建话题
func (r *TopicRepository) CreateTopic(ctx context.Context, topic *model.Topic) error {
	query := `
		INSERT INTO topics (title, description, votes, status, created_at)
		VALUES (?, ?, 0, ?, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query, topic.Title, topic.Description, topic.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	topic.ID = id
	return nil
}

// IncrementVotes 话题票数加一，只对开放中的话题生效
func (r *TopicRepository) IncrementVotes(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE topics SET votes = votes + 1 WHERE id = ? AND status = ?`, id, model.TopicStatusOpen)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetTopicStatus 设置话题状态
func (r *TopicRepository) SetTopicStatus(ctx context.Context, id int64, status int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE topics SET status = ? WHERE id = ?`, status, id)
	return err
}

// DeleteTopic 删除话题
func (r *TopicRepository) DeleteTopic(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	return err
}
