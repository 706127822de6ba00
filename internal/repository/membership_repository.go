package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// MembershipRepository 用户会员仓库接口
type MembershipRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*model.UserMembership, error)
	Create(ctx context.Context, m *model.UserMembership) error
	UpdatePeriod(ctx context.Context, userID int64, membershipType string, endDate time.Time, active bool) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// membershipRepository 用户会员仓库实现
type membershipRepository struct {
	db *sqlx.DB
}

// NewMembershipRepository 创建用户会员仓库实例
func NewMembershipRepository(db *sqlx.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// GetByUserID 获取用户的会员记录，user_id有唯一索引
func (r *membershipRepository) GetByUserID(ctx context.Context, userID int64) (*model.UserMembership, error) {
	var m model.UserMembership
	err := r.db.GetContext(ctx, &m, `SELECT * FROM user_memberships WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create 创建会员记录
func (r *membershipRepository) Create(ctx context.Context, m *model.UserMembership) error {
	query := `
		INSERT INTO user_memberships (user_id, type, start_date, end_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query, m.UserID, m.Type, m.StartDate, m.EndDate, m.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// UpdatePeriod 更新会员类型与到期时间
func (r *membershipRepository) UpdatePeriod(ctx context.Context, userID int64, membershipType string, endDate time.Time, active bool) error {
	query := `
		UPDATE user_memberships
		SET type = ?, end_date = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, membershipType, endDate, active, userID)
	return err
}

// DeactivateExpired 停用已过期的会员，返回停用数量
func (r *membershipRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE user_memberships
		SET is_active = false, updated_at = CURRENT_TIMESTAMP
		WHERE is_active = true AND end_date < ?
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
