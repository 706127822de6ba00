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

// QuizHandler 趣味答题处理器
type QuizHandler struct {
	quizService *service.QuizService
	logger      *logger.Logger
}

// NewQuizHandler 创建答题处理器实例
func NewQuizHandler(quizService *service.QuizService, logger *logger.Logger) *QuizHandler {
	return &QuizHandler{
		quizService: quizService,
		logger:      logger,
	}
}

// GetQuestions 随机获取一组题目
func (h *QuizHandler) GetQuestions(c *gin.Context) {
	count, _ := strconv.Atoi(c.DefaultQuery("count", "5"))
	category := c.Query("category")

	questions, err := h.quizService.GetQuestions(context.Background(), category, count)
	if err != nil {
		h.logger.Error("获取题目失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取题目失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取题目成功",
		"data":    questions,
	})
}

// SubmitAnswer 提交答案
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	var req types.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	userID := c.GetInt64("user_id")
	result, err := h.quizService.SubmitAnswer(context.Background(), userID, req.QuestionID, *req.Answer)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "提交成功",
		"data":    result,
	})
}

// GetTodayScore 获取当日得分
func (h *QuizHandler) GetTodayScore(c *gin.Context) {
	userID := c.GetInt64("user_id")
	score, err := h.quizService.GetTodayScore(context.Background(), userID)
	if err != nil {
		h.logger.Error("获取得分失败", "error", err, "user_id", userID)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取得分失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取得分成功",
		"data":    gin.H{"score": score},
	})
}
