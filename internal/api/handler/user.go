package handler

import (
	"context"
	"net/http"
	"regexp"
	"starweb/internal/constants"
	"starweb/internal/repository"
	"starweb/internal/service"
	"starweb/internal/types"
	"starweb/pkg/geetest"
	"starweb/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler 用户处理器
type UserHandler struct {
	userService   service.UserService
	redisClient   *redis.Client
	logger        *logger.Logger
	geetestClient *geetest.GeetestClient
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService service.UserService, redisClient *redis.Client, logger *logger.Logger, geetestClient *geetest.GeetestClient) *UserHandler {
	return &UserHandler{
		userService:   userService,
		redisClient:   redisClient,
		logger:        logger,
		geetestClient: geetestClient,
	}
}

// SendMessage 发送验证码邮件，需通过人机验证
func (h *UserHandler) SendMessage(c *gin.Context) {
	var req types.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	// 兼容两种传参方式
	params := geetest.VerifyParams{
		LotNumber:     req.LotNumber,
		CaptchaOutput: req.CaptchaOutput,
		PassToken:     req.PassToken,
		GenTime:       req.GenTime,
	}
	if req.Validate != nil {
		params = geetest.VerifyParams{
			LotNumber:     req.Validate.LotNumber,
			CaptchaOutput: req.Validate.CaptchaOutput,
			PassToken:     req.Validate.PassToken,
			GenTime:       req.Validate.GenTime,
		}
	}
	passed, err := h.geetestClient.Verify(params)
	if err != nil || !passed {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": constants.ErrCaptchaFailed})
		return
	}

	// 同一邮箱1分钟内只发一次
	rateKey := "email_rate:" + req.Email
	ok := h.redisClient.SetNX(context.Background(), rateKey, 1, time.Minute)
	if !ok.Val() {
		c.JSON(http.StatusOK, gin.H{"code": 429, "message": constants.ErrOperationTooFrequent})
		return
	}

	if err := h.userService.SendEmail(context.Background(), req.Email, req.Type); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": "发送验证码失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "验证码已发送"})
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": "参数错误或参数不足"})
		return
	}

	// 验证用户名格式
	if !regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`).MatchString(req.Username) {
		c.JSON(http.StatusOK, gin.H{"code": 403, "message": "用户名只能为英文或数字"})
		return
	}

	// 验证密码格式
	if !regexp.MustCompile(`^[A-Za-z0-9]{6,}$`).MatchString(req.Password) ||
		!regexp.MustCompile(`[A-Za-z]`).MatchString(req.Password) ||
		!regexp.MustCompile(`[0-9]`).MatchString(req.Password) {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": "密码必须为英文加数字长度在6位以上的密码"})
		return
	}

	// 验证邮箱验证码
	if !h.userService.VerifyEmailCode(context.Background(), req.Email, req.Code) {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrVerifyCodeWrong})
		return
	}

	// 使用分布式锁控制并发注册
	lockKey := "user_register:" + req.Email
	lock := h.redisClient.SetNX(context.Background(), lockKey, "1", 10*time.Second)
	if !lock.Val() {
		c.JSON(http.StatusOK, gin.H{"code": 429, "message": constants.ErrOperationTooFrequent})
		return
	}
	defer h.redisClient.Del(context.Background(), lockKey)

	// 密码加密
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 500, "message": constants.ErrInternalServer})
		return
	}

	user := &repository.User{
		Username: req.Username,
		Password: string(hashedPassword),
		Email:    req.Email,
	}
	if err := h.userService.Create(context.Background(), user); err != nil {
		switch err.Error() {
		case "username already exists":
			c.JSON(http.StatusOK, gin.H{"code": 406, "message": constants.ErrUsernameExists})
		case "email already exists":
			c.JSON(http.StatusOK, gin.H{"code": 409, "message": constants.ErrEmailExists})
		default:
			h.logger.Error("创建用户失败", "error", err)
			c.JSON(http.StatusOK, gin.H{"code": 500, "message": constants.ErrInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": constants.SuccessRegister})
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	user, err := h.userService.Login(context.Background(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 401, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": constants.SuccessLogin,
		"data": gin.H{
			"token":    user.Token,
			"username": user.Username,
			"is_admin": user.IsAdmin,
		},
	})
}

// ResetPassword 通过邮箱验证码重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": constants.ErrInvalidParams})
		return
	}

	if err := h.userService.ResetPassword(context.Background(), req.Email, req.Code, req.Password); err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 400, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": 200, "message": "密码重置成功，请重新登录"})
}

// GetUserInfo 获取当前登录用户信息
func (h *UserHandler) GetUserInfo(c *gin.Context) {
	userID := c.GetInt64("user_id")
	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"code": 404, "message": constants.ErrUserNotFound})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "获取用户信息成功",
		"data": gin.H{
			"id":         user.ID,
			"username":   user.Username,
			"email":      user.Email,
			"is_admin":   user.IsAdmin,
			"created_at": user.CreatedAt,
		},
	})
}
