package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// ProductRepository 商品存储库
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository 创建商品存储库实例
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// 卡密商品的库存取可用卡密数量，会员商品直接用stock字段
const productStockExpr = `
	(CASE WHEN p.type = 'card_key'
		THEN (SELECT COUNT(*) FROM product_keys k WHERE k.product_id = p.id AND k.status = 0)
		ELSE p.stock
	END) AS stock`

// GetActiveProducts 获取所有上架商品
func (r *ProductRepository) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	query := `
		SELECT p.id, p.name, p.description, p.price, p.type, p.duration_days, p.is_active, p.created_at, p.updated_at,` + productStockExpr + `
		FROM products p
		WHERE p.is_active = true
		ORDER BY p.id
	`
	err := r.db.SelectContext(ctx, &products, query)
	return products, err
}

// GetProducts 获取所有商品（含下架，管理后台用）
func (r *ProductRepository) GetProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	query := `
		SELECT p.id, p.name, p.description, p.price, p.type, p.duration_days, p.is_active, p.created_at, p.updated_at,` + productStockExpr + `
		FROM products p
		ORDER BY p.id
	`
	err := r.db.SelectContext(ctx, &products, query)
	return products, err
}

// GetProductByID 根据ID获取商品
func (r *ProductRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	query := `
		SELECT p.id, p.name, p.description, p.price, p.type, p.duration_days, p.is_active, p.created_at, p.updated_at,` + productStockExpr + `
		FROM products p
		WHERE p.id = ?
	`
	err := r.db.GetContext(ctx, &product, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct 创建商品
func (r *ProductRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (name, description, price, type, duration_days, stock, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Type,
		product.DurationDays, product.Stock, product.IsActive)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	product.ID = id
	return nil
}

// UpdateProduct 更新商品
func (r *ProductRepository) UpdateProduct(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = ?, description = ?, price = ?, type = ?, duration_days = ?, stock = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		product.Name, product.Description, product.Price, product.Type,
		product.DurationDays, product.Stock, product.IsActive, product.ID)
	return err
}

// DeleteProduct 删除商品
func (r *ProductRepository) DeleteProduct(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}
