package service

import (
	"context"
	"errors"
	"fmt"
	"starweb/internal/repository"
	"starweb/pkg/async"
	"starweb/pkg/email"
	"starweb/pkg/logger"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"k8s.io/apimachinery/pkg/util/rand"
)

// UserService 用户服务接口
type UserService interface {
	Create(ctx context.Context, user *repository.User) error
	GetByID(ctx context.Context, id int64) (*repository.User, error)
	GetByUsername(ctx context.Context, username string) (*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	GetByToken(ctx context.Context, token string) (*repository.User, error)
	Update(ctx context.Context, user *repository.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, page, pageSize int) ([]*repository.User, error)
	Count(ctx context.Context) (int64, error)
	SearchUsers(ctx context.Context, keyword string) ([]*repository.User, error)
	SendEmail(ctx context.Context, email, msgType string) error
	VerifyEmailCode(ctx context.Context, email, code string) bool
	Login(ctx context.Context, identifier, password string) (*repository.User, error)
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	EnsureAdmin(ctx context.Context, username, password, adminEmail string) error
}

// userService 用户服务实现
type userService struct {
	userRepo    repository.UserRepository
	redisClient *redis.Client
	emailSvc    *email.Service
	logger      *logger.Logger
	worker      *async.Worker
}

// NewUserService 创建用户服务实例
func NewUserService(
	userRepo repository.UserRepository,
	redisClient *redis.Client,
	worker *async.Worker,
	emailSvc *email.Service,
	logger *logger.Logger,
) UserService {
	return &userService{
		userRepo:    userRepo,
		redisClient: redisClient,
		worker:      worker,
		emailSvc:    emailSvc,
		logger:      logger,
	}
}

// Create 创建用户
func (s *userService) Create(ctx context.Context, user *repository.User) error {
	// 检查用户名是否已存在
	existUser, err := s.userRepo.GetByUsername(ctx, user.Username)
	if err == nil && existUser != nil {
		return errors.New("username already exists")
	}

	// 检查邮箱是否已存在
	existUser, err = s.userRepo.GetByEmail(ctx, user.Email)
	if err == nil && existUser != nil {
		return errors.New("email already exists")
	}

	// 创建用户
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}

	// 欢迎邮件走异步队列发送
	to, name := user.Email, user.Username
	s.worker.AddTask(func() {
		if err := s.emailSvc.SendWelcomeEmail(to, name); err != nil {
			s.logger.Error("发送欢迎邮件失败", "error", err, "email", to)
		}
	})

	return nil
}

// GetByID 根据ID获取用户
func (s *userService) GetByID(ctx context.Context, id int64) (*repository.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername 根据用户名获取用户
func (s *userService) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}

// GetByEmail 根据邮箱获取用户
func (s *userService) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// GetByToken 根据Token获取用户
func (s *userService) GetByToken(ctx context.Context, token string) (*repository.User, error) {
	return s.userRepo.GetByToken(ctx, token)
}

// Update 更新用户信息
func (s *userService) Update(ctx context.Context, user *repository.User) error {
	return s.userRepo.Update(ctx, user)
}

// Delete 删除用户
func (s *userService) Delete(ctx context.Context, id int64) error {
	return s.userRepo.Delete(ctx, id)
}

// List 获取用户列表
func (s *userService) List(ctx context.Context, page, pageSize int) ([]*repository.User, error) {
	offset := (page - 1) * pageSize
	return s.userRepo.List(ctx, offset, pageSize)
}

// Count 获取用户总数
func (s *userService) Count(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// SearchUsers 根据关键词搜索用户
func (s *userService) SearchUsers(ctx context.Context, keyword string) ([]*repository.User, error) {
	return s.userRepo.SearchUsers(ctx, keyword)
}

// SendEmail 发送验证码邮件
func (s *userService) SendEmail(ctx context.Context, email, msgType string) error {
	// 生成6位随机验证码
	code := fmt.Sprintf("%06d", rand.Intn(1000000))

	// 根据消息类型发送不同的邮件
	var err error
	switch msgType {
	case "register":
		err = s.emailSvc.SendVerificationCode(email, code, 5)
	case "reset_password":
		// 获取用户信息，如果找不到用户则使用邮箱作为用户名
		user, userErr := s.userRepo.GetByEmail(ctx, email)
		userName := email
		if userErr == nil && user != nil {
			userName = user.Username
		}
		err = s.emailSvc.SendPasswordResetCode(email, userName, code, 5)
	default:
		return fmt.Errorf("unsupported message type: %s", msgType)
	}

	if err != nil {
		s.logger.Error("Failed to send email", "error", err)
		return err
	}

	// 将验证码保存到Redis，设置5分钟过期
	key := "email_verify:" + email
	err = s.redisClient.Set(ctx, key, code, 5*time.Minute).Err()
	if err != nil {
		s.logger.Error("Failed to save verification code", "error", err)
		return err
	}

	return nil
}

// VerifyEmailCode 校验邮箱验证码，通过后立即删除避免复用
func (s *userService) VerifyEmailCode(ctx context.Context, email, code string) bool {
	key := "email_verify:" + email
	saved, err := s.redisClient.Get(ctx, key).Result()
	if err != nil || saved == "" || saved != code {
		return false
	}
	s.redisClient.Del(ctx, key)
	return true
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, identifier, password string) (*repository.User, error) {
	// 尝试通过用户名或邮箱获取用户
	var user *repository.User
	var err error

	// 先尝试用户名登录
	user, err = s.userRepo.GetByUsername(ctx, identifier)
	if err != nil && err.Error() == "user not found" {
		// 如果用户名不存在，尝试邮箱登录
		user, err = s.userRepo.GetByEmail(ctx, identifier)
		if err != nil {
			return nil, errors.New("用户不存在")
		}
	} else if err != nil {
		return nil, err
	}

	// 验证密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("密码错误")
	}

	// 只有在用户没有token或token为空时才生成新的token
	if user.Token == "" {
		// 生成固定的32位随机token
		user.Token = rand.String(32)

		// 更新用户token
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// ResetPassword 通过邮箱验证码重置密码
func (s *userService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !s.VerifyEmailCode(ctx, email, code) {
		return errors.New("验证码错误或已过期")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return errors.New("用户不存在")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.Password = string(hashed)
	// 重置密码后旧token作废
	user.Token = rand.String(32)
	return s.userRepo.Update(ctx, user)
}

// EnsureAdmin 确保默认管理员存在，用于首次启动引导
func (s *userService) EnsureAdmin(ctx context.Context, username, password, adminEmail string) error {
	if password == "" {
		return nil
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &repository.User{
		Username: username,
		Password: string(hashed),
		Email:    adminEmail,
		IsAdmin:  true,
		Token:    rand.String(32),
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建默认管理员失败: %w", err)
	}

	s.logger.Info("已创建默认管理员账号", "username", username)
	return nil
}
