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
)

// ContentAdminHandler 内容管理处理器，覆盖留言板、答题和话题
type ContentAdminHandler struct {
	guestbookService *service.GuestbookService
	quizService      *service.QuizService
	topicService     *service.TopicService
	logger           *logger.Logger
}

// NewContentAdminHandler 创建内容管理处理器实例
func NewContentAdminHandler(
	guestbookService *service.GuestbookService,
	quizService *service.QuizService,
	topicService *service.TopicService,
	logger *logger.Logger,
) *ContentAdminHandler {
	return &ContentAdminHandler{
		guestbookService: guestbookService,
		quizService:      quizService,
		topicService:     topicService,
		logger:           logger,
	}
}

// ListMessages 获取全部留言（含已隐藏）
func (h *ContentAdminHandler) ListMessages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	result, err := h.guestbookService.GetAllMessages(context.Background(), page, limit)
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

// ReplyMessage 回复留言
func (h *ContentAdminHandler) ReplyMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req types.ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.guestbookService.ReplyMessage(context.Background(), id, req.Reply); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "回复成功"})
}

// SetMessageVisible 显示/隐藏留言
func (h *ContentAdminHandler) SetMessageVisible(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.guestbookService.SetMessageVisible(context.Background(), id, *req.Visible); err != nil {
		h.logger.Error("更新留言可见性失败", "error", err, "message_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "更新留言失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeleteMessage 删除留言
func (h *ContentAdminHandler) DeleteMessage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.guestbookService.DeleteMessage(context.Background(), id); err != nil {
		h.logger.Error("删除留言失败", "error", err, "message_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除留言失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}

// ListQuestions 获取题目列表
func (h *ContentAdminHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	questions, total, err := h.quizService.ListQuestions(context.Background(), page, limit)
	if err != nil {
		h.logger.Error("获取题目列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取题目列表失败"})
		return
	}

	// 管理端需要看到选项和答案
	list := make([]gin.H, 0, len(questions))
	for i := range questions {
		list = append(list, gin.H{
			"id":       questions[i].ID,
			"question": questions[i].Question,
			"options":  questions[i].Options,
			"answer":   questions[i].Answer,
			"category": questions[i].Category,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取题目列表成功",
		"data":    gin.H{"total": total, "items": list},
	})
}

// CreateQuestion 创建题目
func (h *ContentAdminHandler) CreateQuestion(c *gin.Context) {
	var req types.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	question := &model.QuizQuestion{
		Question: req.Question,
		Options:  req.Options,
		Answer:   *req.Answer,
		Category: req.Category,
	}
	if err := h.quizService.CreateQuestion(context.Background(), question); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    gin.H{"id": question.ID},
	})
}

// UpdateQuestion 更新题目
func (h *ContentAdminHandler) UpdateQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req types.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	question := &model.QuizQuestion{
		ID:       id,
		Question: req.Question,
		Options:  req.Options,
		Answer:   *req.Answer,
		Category: req.Category,
	}
	if err := h.quizService.UpdateQuestion(context.Background(), question); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeleteQuestion 删除题目
func (h *ContentAdminHandler) DeleteQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.quizService.DeleteQuestion(context.Background(), id); err != nil {
		h.logger.Error("删除题目失败", "error", err, "question_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除题目失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}

// CreateTopic 创建话题
func (h *ContentAdminHandler) CreateTopic(c *gin.Context) {
	var req types.TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	topic := &model.Topic{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := h.topicService.CreateTopic(context.Background(), topic); err != nil {
		h.logger.Error("创建话题失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "创建话题失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    gin.H{"id": topic.ID},
	})
}

// SetTopicStatus 开放/关闭话题投票
func (h *ContentAdminHandler) SetTopicStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req struct {
		Status *int `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.topicService.SetTopicStatus(context.Background(), id, *req.Status); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeleteTopic 删除话题
func (h *ContentAdminHandler) DeleteTopic(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.topicService.DeleteTopic(context.Background(), id); err != nil {
		h.logger.Error("删除话题失败", "error", err, "topic_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除话题失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}
