package admin

import (
	"context"
	"net/http"
	"starweb/internal/constants"
	"starweb/internal/service"
	"starweb/pkg/logger"
	"strconv"

	"github.com/gin-gonic/gin"
	"k8s.io/apimachinery/pkg/util/rand"
)

// UserAdminHandler 用户管理处理器
type UserAdminHandler struct {
	userService service.UserService
	logger      *logger.Logger
}

// NewUserAdminHandler 创建用户管理处理器实例
func NewUserAdminHandler(userService service.UserService, logger *logger.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		userService: userService,
		logger:      logger,
	}
}

// ListUsers 获取用户列表
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, err := h.userService.List(context.Background(), page, pageSize)
	if err != nil {
		h.logger.Error("获取用户列表失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取用户列表失败"})
		return
	}
	total, err := h.userService.Count(context.Background())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "获取用户总数失败"})
		return
	}

	// 密码和token不下发
	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"is_admin":   u.IsAdmin,
			"status":     u.Status,
			"created_at": u.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取用户列表成功",
		"data":    gin.H{"total": total, "items": list},
	})
}

// SearchUsers 根据关键词搜索用户
func (h *UserAdminHandler) SearchUsers(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	users, err := h.userService.SearchUsers(context.Background(), keyword)
	if err != nil {
		h.logger.Error("搜索用户失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "搜索用户失败"})
		return
	}

	list := make([]gin.H, 0, len(users))
	for _, u := range users {
		list = append(list, gin.H{
			"id":       u.ID,
			"username": u.Username,
			"email":    u.Email,
			"is_admin": u.IsAdmin,
			"status":   u.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "搜索用户成功",
		"data":    list,
	})
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	IsAdmin *bool `json:"is_admin"`
	Status  *int  `json:"status"`
}

// UpdateUser 更新用户状态/权限
func (h *UserAdminHandler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	user, err := h.userService.GetByID(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrUserNotFound})
		return
	}

	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if err := h.userService.Update(context.Background(), user); err != nil {
		h.logger.Error("更新用户失败", "error", err, "user_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "更新用户失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessUpdate})
}

// ResetUserToken 重置用户Token，强制重新登录
func (h *UserAdminHandler) ResetUserToken(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	user, err := h.userService.GetByID(context.Background(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrUserNotFound})
		return
	}

	user.Token = rand.String(32)
	if err := h.userService.Update(context.Background(), user); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "重置Token失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "Token已重置"})
}

// DeleteUser 删除用户
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.userService.Delete(context.Background(), id); err != nil {
		h.logger.Error("删除用户失败", "error", err, "user_id", id)
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "删除用户失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessDelete})
}
