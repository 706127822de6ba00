package handler

import (
	"context"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/service"
	"starweb/internal/types"
	"starweb/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ShopHandler 商城处理器
type ShopHandler struct {
	productService *service.ProductService
	paymentService *service.PaymentService
	logger         *logger.Logger
}

// NewShopHandler 创建商城处理器实例
func NewShopHandler(productService *service.ProductService, paymentService *service.PaymentService, logger *logger.Logger) *ShopHandler {
	return &ShopHandler{
		productService: productService,
		paymentService: paymentService,
		logger:         logger,
	}
}

// GetProducts 获取上架商品列表
func (h *ShopHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.GetActiveProducts(context.Background())
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

// GetChannels 获取收银台可选的支付渠道
func (h *ShopHandler) GetChannels(c *gin.Context) {
	channels, err := h.paymentService.EnabledChannels(context.Background())
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

// Checkout 创建订单并发起支付
func (h *ShopHandler) Checkout(c *gin.Context) {
	var req types.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	userID := c.GetInt64("user_id")
	result, err := h.paymentService.Checkout(context.Background(), userID, req.ProductID, req.Channel, c.ClientIP())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "订单创建成功",
		"data":    result,
	})
}

// GetUserOrders 获取当前用户的订单列表
func (h *ShopHandler) GetUserOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}

	userID := c.GetInt64("user_id")
	result, err := h.paymentService.ListUserOrders(context.Background(), userID, page, pageSize)
	if err != nil {
		h.logger.Error("获取订单列表失败", "error", err, "user_id", userID)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取订单列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取订单列表成功",
		"data":    result,
	})
}

// GetOrderStatus 查询订单状态，前端支付完成后轮询
func (h *ShopHandler) GetOrderStatus(c *gin.Context) {
	orderNo := c.Query("order_no")
	if orderNo == "" {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	userID := c.GetInt64("user_id")
	order, err := h.paymentService.GetOrder(context.Background(), userID, orderNo)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrOrderNotFound})
		return
	}

	data := gin.H{
		"order_no": order.OrderNo,
		"status":   order.Status,
	}
	// 已发货的卡密跟随状态一起返回
	if order.ProductKey.Valid {
		data["product_key"] = order.ProductKey.String
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取订单状态成功",
		"data":    data,
	})
}
