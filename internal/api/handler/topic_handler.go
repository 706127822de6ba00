package handler

import (
	"context"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/service"
	"starweb/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
)

// TopicHandler 热门话题处理器
type TopicHandler struct {
	topicService *service.TopicService
	logger       *logger.Logger
}

// NewTopicHandler 创建话题处理器实例
func NewTopicHandler(topicService *service.TopicService, logger *logger.Logger) *TopicHandler {
	return &TopicHandler{
		topicService: topicService,
		logger:       logger,
	}
}

// GetTopics 按票数获取话题列表
func (h *TopicHandler) GetTopics(c *gin.Context) {
	topics, err := h.topicService.ListTopics(context.Background())
	if err != nil {
		h.logger.Error("获取话题列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取话题列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取话题列表成功",
		"data":    topics,
	})
}

// Vote 给话题投票
func (h *TopicHandler) Vote(c *gin.Context) {
	topicID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	userID := c.GetInt64("user_id")
	if err := h.topicService.Vote(context.Background(), topicID, userID); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "投票成功"})
}
