package service

import (
	"context"
	"errors"
	"strings"

	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/repository"
	"starweb/pkg/logger"

	"github.com/google/uuid"
)

// ProductService 商品服务
type ProductService struct {
	productRepo *repository.ProductRepository
	keyRepo     repository.ProductKeyRepository
	logger      *logger.Logger
}

// NewProductService 创建商品服务实例
func NewProductService(productRepo *repository.ProductRepository, keyRepo repository.ProductKeyRepository, logger *logger.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		keyRepo:     keyRepo,
		logger:      logger,
	}
}

// GetActiveProducts 获取上架商品列表
func (s *ProductService) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetActiveProducts(ctx)
}

// GetProducts 获取全部商品（管理后台）
func (s *ProductService) GetProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.GetProducts(ctx)
}

// GetProduct 获取商品详情
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, errors.New(constants.ErrProductNotFound)
	}
	return product, nil
}

// CreateProduct 创建商品
func (s *ProductService) CreateProduct(ctx context.Context, product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.productRepo.CreateProduct(ctx, product)
}

// UpdateProduct 更新商品
func (s *ProductService) UpdateProduct(ctx context.Context, product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.productRepo.UpdateProduct(ctx, product)
}

// DeleteProduct 删除商品
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	return s.productRepo.DeleteProduct(ctx, id)
}

// ImportKeys 批量导入卡密，一行一条，空行跳过，重复的由唯一索引过滤
// 返回实际导入数量
func (s *ProductService) ImportKeys(ctx context.Context, productID int64, raw string) (int, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return 0, errors.New(constants.ErrProductNotFound)
	}
	if product.Type != model.ProductTypeCardKey {
		return 0, errors.New(constants.ErrInvalidParams)
	}

	var keys []model.ProductKey
	for _, line := range strings.Split(raw, "\n") {
		secret := strings.TrimSpace(line)
		if secret == "" {
			continue
		}
		keys = append(keys, model.ProductKey{ProductID: productID, Secret: secret})
	}
	if len(keys) == 0 {
		return 0, errors.New(constants.ErrInvalidParams)
	}

	created, err := s.keyRepo.BulkCreate(ctx, keys)
	if err != nil {
		return created, err
	}
	s.logger.Info("卡密导入完成", "product_id", productID, "submitted", len(keys), "created", created)
	return created, nil
}

// GenerateKeys 自动生成指定数量的卡密
func (s *ProductService) GenerateKeys(ctx context.Context, productID int64, count int) (int, error) {
	if count <= 0 || count > 1000 {
		return 0, errors.New(constants.ErrInvalidParams)
	}
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return 0, errors.New(constants.ErrProductNotFound)
	}
	if product.Type != model.ProductTypeCardKey {
		return 0, errors.New(constants.ErrInvalidParams)
	}

	keys := make([]model.ProductKey, 0, count)
	for i := 0; i < count; i++ {
		keys = append(keys, model.ProductKey{
			ProductID: productID,
			Secret:    strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")),
		})
	}
	return s.keyRepo.BulkCreate(ctx, keys)
}

// ListKeys 分页获取商品的卡密列表（管理后台）
func (s *ProductService) ListKeys(ctx context.Context, productID int64, page, pageSize int) ([]model.ProductKey, int64, error) {
	return s.keyRepo.ListByProduct(ctx, productID, page, pageSize)
}

// DeleteKey 删除未售出的卡密
func (s *ProductService) DeleteKey(ctx context.Context, id int64) error {
	return s.keyRepo.Delete(ctx, id)
}

// validateProduct 商品基础校验
func validateProduct(product *model.Product) error {
	if product.Name == "" || !product.Price.IsPositive() {
		return errors.New(constants.ErrInvalidParams)
	}
	switch product.Type {
	case model.ProductTypeCardKey:
	case model.ProductTypeMembership:
		if product.DurationDays <= 0 {
			return errors.New(constants.ErrInvalidParams)
		}
	default:
		return errors.New(constants.ErrInvalidParams)
	}
	return nil
}
