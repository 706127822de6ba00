package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// ChannelRepository 支付渠道存储库
type ChannelRepository struct {
	db *sqlx.DB
}

// NewChannelRepository 创建支付渠道存储库实例
func NewChannelRepository(db *sqlx.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// GetChannels 获取所有渠道配置
func (r *ChannelRepository) GetChannels(ctx context.Context) ([]model.PaymentChannel, error) {
	var channels []model.PaymentChannel
	query := `SELECT * FROM payment_channels ORDER BY sort_order, id`
	err := r.db.SelectContext(ctx, &channels, query)
	return channels, err
}

// GetChannelByCode 根据渠道代码获取配置
func (r *ChannelRepository) GetChannelByCode(ctx context.Context, code string) (*model.PaymentChannel, error) {
	var channel model.PaymentChannel
	err := r.db.GetContext(ctx, &channel, `SELECT * FROM payment_channels WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// UpsertChannel 创建或更新渠道配置，code列有唯一索引
func (r *ChannelRepository) UpsertChannel(ctx context.Context, channel *model.PaymentChannel) error {
	query := `
		INSERT INTO payment_channels (code, name, enabled, config, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name), enabled = VALUES(enabled), config = VALUES(config),
			sort_order = VALUES(sort_order), updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query,
		channel.Code, channel.Name, channel.Enabled, channel.Config, channel.SortOrder)
	return err
}

// SetChannelEnabled 启用/停用渠道
func (r *ChannelRepository) SetChannelEnabled(ctx context.Context, code string, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payment_channels SET enabled = ?, updated_at = CURRENT_TIMESTAMP WHERE code = ?`, enabled, code)
	return err
}
