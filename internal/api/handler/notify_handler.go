package handler

import (
	"starweb/internal/service"
	"starweb/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NotifyHandler 支付异步通知处理器
// 应答体由各渠道适配器给出：微信要求XML确认，其余渠道为纯文本success/fail
type NotifyHandler struct {
	paymentService *service.PaymentService
	logger         *logger.Logger
}

// NewNotifyHandler 创建通知处理器实例
func NewNotifyHandler(paymentService *service.PaymentService, logger *logger.Logger) *NotifyHandler {
	return &NotifyHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// HandleNotify 处理渠道异步通知
func (h *NotifyHandler) HandleNotify(c *gin.Context) {
	channel := c.Param("channel")
	contentType, body := h.paymentService.ProcessNotify(c.Request.Context(), channel, c.Request)
	c.Data(200, contentType, []byte(body))
}
