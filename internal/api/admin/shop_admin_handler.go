package admin

import (
	"context"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/service"
	"starweb/internal/types"
	"starweb/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ShopAdminHandler 商城管理处理器，覆盖商品、卡密、订单和支付渠道
type ShopAdminHandler struct {
	productService *service.ProductService
	paymentService *service.PaymentService
	logger         *logger.Logger
}

// NewShopAdminHandler 创建商城管理处理器实例
func NewShopAdminHandler(productService *service.ProductService, paymentService *service.PaymentService, logger *logger.Logger) *ShopAdminHandler {
	return &ShopAdminHandler{
		productService: productService,
		paymentService: paymentService,
		logger:         logger,
	}
}

// ListProducts 获取全部商品（含下架）
func (h *ShopAdminHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.GetProducts(context.Background())
	if err != nil {
		h.logger.Error("获取商品列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取商品列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取商品列表成功",
		"data":    products,
	})
}

// CreateProduct 创建商品
func (h *ShopAdminHandler) CreateProduct(c *gin.Context) {
	var req types.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidFormat})
		return
	}

	product := &model.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Type:         req.Type,
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive,
	}
	if err := h.productService.CreateProduct(context.Background(), product); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    gin.H{"id": product.ID},
	})
}

// UpdateProduct 更新商品
func (h *ShopAdminHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req types.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidFormat})
		return
	}

	product := &model.Product{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Type:         req.Type,
		DurationDays: req.DurationDays,
		IsActive:     req.IsActive,
	}
	if err := h.productService.UpdateProduct(context.Background(), product); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeleteProduct 删除商品
func (h *ShopAdminHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.productService.DeleteProduct(context.Background(), id); err != nil {
		h.logger.Error("删除商品失败", "error", err, "product_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除商品失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}

// ImportKeys 导入卡密，提供明文列表或指定数量自动生成
func (h *ShopAdminHandler) ImportKeys(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req types.ImportKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var created int
	if req.Keys != "" {
		created, err = h.productService.ImportKeys(context.Background(), productID, req.Keys)
	} else {
		created, err = h.productService.GenerateKeys(context.Background(), productID, req.Count)
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "卡密导入成功",
		"data":    gin.H{"created": created},
	})
}

// ListKeys 获取商品的卡密列表
func (h *ShopAdminHandler) ListKeys(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	keys, total, err := h.productService.ListKeys(context.Background(), productID, page, pageSize)
	if err != nil {
		h.logger.Error("获取卡密列表失败", "error", err, "product_id", productID)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取卡密列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取卡密列表成功",
		"data":    gin.H{"total": total, "items": keys},
	})
}

// DeleteKey 删除未售出的卡密
func (h *ShopAdminHandler) DeleteKey(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.productService.DeleteKey(context.Background(), id); err != nil {
		h.logger.Error("删除卡密失败", "error", err, "key_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除卡密失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}

// ListOrders 获取订单列表，可按状态过滤
func (h *ShopAdminHandler) ListOrders(c *gin.Context) {
	status, err := strconv.Atoi(c.DefaultQuery("status", "-1"))
	if err != nil {
		status = -1
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	result, err := h.paymentService.ListOrders(context.Background(), status, page, pageSize)
	if err != nil {
		h.logger.Error("获取订单列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取订单列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取订单列表成功",
		"data":    result,
	})
}

// CancelOrder 取消待支付订单
func (h *ShopAdminHandler) CancelOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if err := h.paymentService.CancelOrder(context.Background(), orderNo); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "订单已取消"})
}

// CompleteOrder 手动完成已支付订单
func (h *ShopAdminHandler) CompleteOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if err := h.paymentService.CompleteOrder(context.Background(), orderNo); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "订单已完成"})
}

// RefundOrder 标记订单为已退款
func (h *ShopAdminHandler) RefundOrder(c *gin.Context) {
	orderNo := c.Param("order_no")
	if err := h.paymentService.RefundOrder(context.Background(), orderNo); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "订单已标记退款"})
}

// ListChannels 获取所有支付渠道配置状态
func (h *ShopAdminHandler) ListChannels(c *gin.Context) {
	channels, err := h.paymentService.ListChannels(context.Background())
	if err != nil {
		h.logger.Error("获取支付渠道失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取支付渠道失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取支付渠道成功",
		"data":    channels,
	})
}

// UpdateChannel 更新支付渠道配置
func (h *ShopAdminHandler) UpdateChannel(c *gin.Context) {
	code := c.Param("code")

	var req types.ChannelUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.paymentService.UpdateChannel(context.Background(), code, req.Enabled, req.Config); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// SetChannelEnabled 切换支付渠道开关
func (h *ShopAdminHandler) SetChannelEnabled(c *gin.Context) {
	code := c.Param("code")

	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.paymentService.SetChannelEnabled(context.Background(), code, *req.Enabled); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}
