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

// PostHandler 博客文章处理器
type PostHandler struct {
	postService *service.PostService
	logger      *logger.Logger
}

// NewPostHandler 创建文章处理器实例
func NewPostHandler(postService *service.PostService, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

// GetPosts 获取已发布文章列表
func (h *PostHandler) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	category := c.Query("category")

	result, err := h.postService.GetPublishedPosts(context.Background(), category, page, limit)
	if err != nil {
		h.logger.Error("获取文章列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取文章列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取文章列表成功",
		"data":    result,
	})
}

// GetPost 获取文章详情
func (h *PostHandler) GetPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	post, err := h.postService.GetPost(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrPostNotFound})
		return
	}
	// 未发布文章不对外展示
	if !post.IsPublished {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrPostNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取文章成功",
		"data":    post,
	})
}

// GetCategories 获取文章分类列表
func (h *PostHandler) GetCategories(c *gin.Context) {
	categories, err := h.postService.GetCategories(context.Background())
	if err != nil {
		h.logger.Error("获取分类列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取分类列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取分类列表成功",
		"data":    categories,
	})
}
