package admin

import (
	"context"
	"database/sql"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/service"
	"starweb/internal/types"
	"starweb/pkg/logger"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PostAdminHandler 文章管理处理器
type PostAdminHandler struct {
	postService *service.PostService
	logger      *logger.Logger
}

// NewPostAdminHandler 创建文章管理处理器实例
func NewPostAdminHandler(postService *service.PostService, logger *logger.Logger) *PostAdminHandler {
	return &PostAdminHandler{
		postService: postService,
		logger:      logger,
	}
}

// ListPosts 获取所有文章（含未发布）
func (h *PostAdminHandler) ListPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	posts, total, err := h.postService.GetAllPosts(context.Background(), page, limit)
	if err != nil {
		h.logger.Error("获取文章列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取文章列表失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取文章列表成功",
		"data":    gin.H{"total": total, "items": posts},
	})
}

// GetPost 获取文章详情（含未发布）
func (h *PostAdminHandler) GetPost(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取文章成功",
		"data":    post,
	})
}

// CreatePost 创建文章
func (h *PostAdminHandler) CreatePost(c *gin.Context) {
	var req types.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	post := &model.Post{
		Title:       req.Title,
		Category:    req.Category,
		Tags:        req.Tags,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	}
	if req.IsPublished {
		post.PublishDate = sql.NullTime{Time: time.Now(), Valid: true}
	}

	if err := h.postService.CreatePost(context.Background(), post); err != nil {
		h.logger.Error("创建文章失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "创建文章失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessCreate,
		"data":    gin.H{"id": post.ID},
	})
}

// UpdatePost 更新文章
func (h *PostAdminHandler) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req types.PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	post, err := h.postService.GetPost(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrPostNotFound})
		return
	}

	post.Title = req.Title
	post.Category = req.Category
	post.Tags = req.Tags
	post.Content = req.Content
	// 首次发布时记录发布时间
	if req.IsPublished && !post.IsPublished {
		post.PublishDate = sql.NullTime{Time: time.Now(), Valid: true}
	}
	post.IsPublished = req.IsPublished

	if err := h.postService.UpdatePost(context.Background(), post); err != nil {
		h.logger.Error("更新文章失败", "error", err, "post_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "更新文章失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// DeletePost 删除文章
func (h *PostAdminHandler) DeletePost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.postService.DeletePost(context.Background(), id); err != nil {
		h.logger.Error("删除文章失败", "error", err, "post_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除文章失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}
