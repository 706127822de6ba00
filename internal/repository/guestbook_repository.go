package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// GuestbookRepository 留言板存储库
type GuestbookRepository struct {
	db *sqlx.DB
}

// NewGuestbookRepository 创建留言板存储库实例
func NewGuestbookRepository(db *sqlx.DB) *GuestbookRepository {
	return &GuestbookRepository{db: db}
}

// CreateMessage 创建留言
func (r *GuestbookRepository) CreateMessage(ctx context.Context, msg *model.Message) error {
	query := `
		INSERT INTO guestbook_messages (nickname, email, content, is_visible, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query, msg.Nickname, msg.Email, msg.Content, msg.IsVisible)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// GetVisibleMessages 获取可见留言列表（分页）
func (r *GuestbookRepository) GetVisibleMessages(ctx context.Context, page, limit int) ([]model.Message, error) {
	var messages []model.Message
	offset := (page - 1) * limit
	query := `
		SELECT * FROM guestbook_messages
		WHERE is_visible = true
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	err := r.db.SelectContext(ctx, &messages, query, limit, offset)
	return messages, err
}

// CountVisibleMessages 获取可见留言总数
func (r *GuestbookRepository) CountVisibleMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM guestbook_messages WHERE is_visible = true`)
	return count, err
}

// GetAllMessages 获取所有留言（管理后台用）
func (r *GuestbookRepository) GetAllMessages(ctx context.Context, page, limit int) ([]model.Message, error) {
	var messages []model.Message
	offset := (page - 1) * limit
	query := `SELECT * FROM guestbook_messages ORDER BY created_at DESC LIMIT ? OFFSET ?`
	err := r.db.SelectContext(ctx, &messages, query, limit, offset)
	return messages, err
}

// CountMessages 获取留言总数
func (r *GuestbookRepository) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM guestbook_messages`)
	return count, err
}

// GetMessageByID 根据ID获取留言
func (r *GuestbookRepository) GetMessageByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `SELECT * FROM guestbook_messages WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ReplyMessage 回复留言
func (r *GuestbookRepository) ReplyMessage(ctx context.Context, id int64, reply string) error {
	query := `UPDATE guestbook_messages SET reply = ?, replied_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, reply, id)
	return err
}

// SetMessageVisible 设置留言可见性
func (r *GuestbookRepository) SetMessageVisible(ctx context.Context, id int64, visible bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE guestbook_messages SET is_visible = ? WHERE id = ?`, visible, id)
	return err
}

// DeleteMessage 删除留言
func (r *GuestbookRepository) DeleteMessage(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM guestbook_messages WHERE id = ?`, id)
	return err
}
