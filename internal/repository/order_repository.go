package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// OrderRepository 订单仓库接口
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByOrderNo(ctx context.Context, orderNo string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64, page, pageSize int) ([]model.Order, int64, error)
	ListOrders(ctx context.Context, status int, page, pageSize int) ([]model.Order, int64, error)
	MarkPaid(ctx context.Context, orderNo, payChannel, providerTradeNo string) (bool, error)
	UpdateStatus(ctx context.Context, orderNo string, status int) error
	SetProductKey(ctx context.Context, orderNo, key string) error
	CancelExpired(ctx context.Context, before time.Time) (int64, error)
}

// orderRepository 订单仓库实现
type orderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository 创建订单仓库实例
func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateOrder 创建订单
func (r *orderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	query := `
		INSERT INTO orders (
			order_no, user_id, product_id, product_name,
			amount, status, pay_channel, remark, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query,
		order.OrderNo,
		order.UserID,
		order.ProductID,
		order.ProductName,
		order.Amount,
		order.Status,
		order.PayChannel,
		order.Remark,
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = id
	return nil
}

// GetOrderByOrderNo 根据订单号获取订单
func (r *orderRepository) GetOrderByOrderNo(ctx context.Context, orderNo string) (*model.Order, error) {
	var order model.Order
	query := `SELECT * FROM orders WHERE order_no = ?`
	err := r.db.GetContext(ctx, &order, query, orderNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID 获取用户的所有订单
func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID int64, page, pageSize int) ([]model.Order, int64, error) {
	// 先获取总记录数
	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE user_id = ?`, userID)
	if err != nil {
		return nil, 0, err
	}

	if total == 0 {
		return []model.Order{}, 0, nil
	}

	offset := (page - 1) * pageSize
	var orders []model.Order
	query := `SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	err = r.db.SelectContext(ctx, &orders, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// ListOrders 获取订单列表（管理后台用），status为-1时不过滤状态
func (r *orderRepository) ListOrders(ctx context.Context, status int, page, pageSize int) ([]model.Order, int64, error) {
	var total int64
	var orders []model.Order
	offset := (page - 1) * pageSize

	if status >= 0 {
		if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders WHERE status = ?`, status); err != nil {
			return nil, 0, err
		}
		query := `SELECT * FROM orders WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
		if err := r.db.SelectContext(ctx, &orders, query, status, pageSize, offset); err != nil {
			return nil, 0, err
		}
		return orders, total, nil
	}

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders`); err != nil {
		return nil, 0, err
	}
	query := `SELECT * FROM orders ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &orders, query, pageSize, offset); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkPaid 将待支付订单标记为已支付
// 条件更新保证 pending -> paid 只发生一次：只有影响行数为1的那次调用
// 允许执行发货，供应商重试通知时不会重复生效
func (r *orderRepository) MarkPaid(ctx context.Context, orderNo, payChannel, providerTradeNo string) (bool, error) {
	query := `
		UPDATE orders
		SET status = ?, pay_channel = ?, provider_trade_no = ?, paid_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE order_no = ? AND status = ?
	`
	nullTradeNo := sql.NullString{
		String: providerTradeNo,
		Valid:  providerTradeNo != "",
	}
	result, err := r.db.ExecContext(ctx, query,
		model.OrderStatusPaid, payChannel, nullTradeNo,
		sql.NullTime{Time: time.Now(), Valid: true},
		orderNo, model.OrderStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateStatus 更新订单状态
func (r *orderRepository) UpdateStatus(ctx context.Context, orderNo string, status int) error {
	query := `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE order_no = ?`
	_, err := r.db.ExecContext(ctx, query, status, orderNo)
	return err
}

// SetProductKey 将发货的卡密写到订单上
func (r *orderRepository) SetProductKey(ctx context.Context, orderNo, key string) error {
	query := `UPDATE orders SET product_key = ?, updated_at = CURRENT_TIMESTAMP WHERE order_no = ?`
	_, err := r.db.ExecContext(ctx, query, key, orderNo)
	return err
}

// CancelExpired 取消超时未支付的订单，返回取消数量
func (r *orderRepository) CancelExpired(ctx context.Context, before time.Time) (int64, error) {
	query := `
		UPDATE orders
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND created_at < ?
	`
	result, err := r.db.ExecContext(ctx, query, model.OrderStatusCancelled, model.OrderStatusPending, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
