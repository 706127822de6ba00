package handler

import (
	"context"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/service"
	"starweb/internal/types"
	"starweb/pkg/geetest"
	"starweb/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GuestbookHandler 留言板处理器
type GuestbookHandler struct {
	guestbookService *service.GuestbookService
	logger           *logger.Logger
}

// NewGuestbookHandler 创建留言板处理器实例
func NewGuestbookHandler(guestbookService *service.GuestbookService, logger *logger.Logger) *GuestbookHandler {
	return &GuestbookHandler{
		guestbookService: guestbookService,
		logger:           logger,
	}
}

// GetMessages 获取留言列表
func (h *GuestbookHandler) GetMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	result, err := h.guestbookService.GetMessages(context.Background(), page, limit)
	if err != nil {
		h.logger.Error("获取留言列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取留言列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取留言列表成功",
		"data":    result,
	})
}

// PostMessage 发布留言
func (h *GuestbookHandler) PostMessage(c *gin.Context) {
	var req types.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	msg := &model.Message{
		Nickname: req.Nickname,
		Email:    req.Email,
		Content:  req.Content,
	}
	captcha := geetest.VerifyParams{
		LotNumber:     req.Validate.LotNumber,
		CaptchaOutput: req.Validate.CaptchaOutput,
		PassToken:     req.Validate.PassToken,
		GenTime:       req.Validate.GenTime,
	}

	if err := h.guestbookService.PostMessage(context.Background(), msg, c.ClientIP(), captcha); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "留言成功",
		"data":    msg,
	})
}
