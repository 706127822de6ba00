package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// ErrNoAvailableKey 卡密池已空
var ErrNoAvailableKey = errors.New("no available product key")

// ProductKeyRepository 卡密仓库接口
type ProductKeyRepository interface {
	BulkCreate(ctx context.Context, keys []model.ProductKey) (int, error)
	ClaimKey(ctx context.Context, productID, orderID, userID int64) (*model.ProductKey, error)
	GetByOrderID(ctx context.Context, orderID int64) (*model.ProductKey, error)
	CountAvailable(ctx context.Context, productID int64) (int64, error)
	ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]model.ProductKey, int64, error)
	UpdateStatus(ctx context.Context, id int64, status int) error
	Delete(ctx context.Context, id int64) error
}

// productKeyRepository 卡密仓库实现
type productKeyRepository struct {
	db *sqlx.DB
}

// NewProductKeyRepository 创建卡密仓库实例
func NewProductKeyRepository(db *sqlx.DB) ProductKeyRepository {
	return &productKeyRepository{db: db}
}

// BulkCreate 批量导入卡密，secret列有唯一索引，重复的条目跳过
func (r *productKeyRepository) BulkCreate(ctx context.Context, keys []model.ProductKey) (int, error) {
	query := `
		INSERT IGNORE INTO product_keys (product_id, secret, status, expires_at, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	created := 0
	for i := range keys {
		result, err := r.db.ExecContext(ctx, query,
			keys[i].ProductID, keys[i].Secret, model.KeyStatusAvailable, keys[i].ExpiresAt)
		if err != nil {
			return created, err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return created, err
		}
		created += int(affected)
	}
	return created, nil
}

// ClaimKey 为订单独占分配一条可用卡密
// 单条UPDATE语句完成抢占，同一张卡密不可能分给两笔订单；
// order_id列的唯一索引保证同一笔订单重复进来也只占一条
func (r *productKeyRepository) ClaimKey(ctx context.Context, productID, orderID, userID int64) (*model.ProductKey, error) {
	query := `
		UPDATE product_keys
		SET status = ?, order_id = ?, user_id = ?
		WHERE product_id = ? AND status = ?
		ORDER BY id
		LIMIT 1
	`
	result, err := r.db.ExecContext(ctx, query,
		model.KeyStatusSold, orderID, userID,
		productID, model.KeyStatusAvailable)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNoAvailableKey
	}

	// 按order_id取回刚分配的卡密
	return r.GetByOrderID(ctx, orderID)
}

// GetByOrderID 根据订单ID获取卡密
func (r *productKeyRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.ProductKey, error) {
	var key model.ProductKey
	err := r.db.GetContext(ctx, &key, `SELECT * FROM product_keys WHERE order_id = ?`, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// CountAvailable 获取商品可用卡密数量
func (r *productKeyRepository) CountAvailable(ctx context.Context, productID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM product_keys WHERE product_id = ? AND status = ?`,
		productID, model.KeyStatusAvailable)
	return count, err
}

// ListByProduct 分页获取商品的卡密列表
func (r *productKeyRepository) ListByProduct(ctx context.Context, productID int64, page, pageSize int) ([]model.ProductKey, int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM product_keys WHERE product_id = ?`, productID)
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	var keys []model.ProductKey
	query := `SELECT * FROM product_keys WHERE product_id = ? ORDER BY id DESC LIMIT ? OFFSET ?`
	err = r.db.SelectContext(ctx, &keys, query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	return keys, total, nil
}

// UpdateStatus 更新卡密状态
func (r *productKeyRepository) UpdateStatus(ctx context.Context, id int64, status int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE product_keys SET status = ? WHERE id = ?`, status, id)
	return err
}

// Delete 删除卡密，已售出的不允许删除
func (r *productKeyRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM product_keys WHERE id = ? AND status = ?`, id, model.KeyStatusAvailable)
	return err
}
