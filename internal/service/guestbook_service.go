package service

import (
	"context"
	"errors"
	"time"

	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/repository"
	"starweb/pkg/geetest"
	"starweb/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// 留言频率限制：同一IP一分钟最多2条
const (
	guestbookRateKeyPrefix = "guestbook:rate:"
	guestbookRateWindow    = time.Minute
	guestbookRateLimit     = 2
)

// GuestbookService 留言板服务
type GuestbookService struct {
	guestbookRepo *repository.GuestbookRepository
	geetestClient *geetest.GeetestClient
	redisClient   *redis.Client
	logger        *logger.Logger
}

// NewGuestbookService 创建留言板服务实例
func NewGuestbookService(
	guestbookRepo *repository.GuestbookRepository,
	geetestClient *geetest.GeetestClient,
	redisClient *redis.Client,
	logger *logger.Logger,
) *GuestbookService {
	return &GuestbookService{
		guestbookRepo: guestbookRepo,
		geetestClient: geetestClient,
		redisClient:   redisClient,
		logger:        logger,
	}
}

// PostMessage 发布留言，需通过人机验证且未触发IP频率限制
func (s *GuestbookService) PostMessage(ctx context.Context, msg *model.Message, clientIP string, captcha geetest.VerifyParams) error {
	passed, err := s.geetestClient.Verify(captcha)
	if err != nil {
		s.logger.Warn("人机验证请求失败", "error", err, "ip", clientIP)
		return errors.New(constants.ErrCaptchaFailed)
	}
	if !passed {
		return errors.New(constants.ErrCaptchaFailed)
	}

	rateKey := guestbookRateKeyPrefix + clientIP
	count, err := s.redisClient.Incr(ctx, rateKey).Result()
	if err == nil {
		if count == 1 {
			s.redisClient.Expire(ctx, rateKey, guestbookRateWindow)
		}
		if count > guestbookRateLimit {
			return errors.New(constants.ErrOperationTooFrequent)
		}
	}

	msg.IsVisible = true
	return s.guestbookRepo.CreateMessage(ctx, msg)
}

// GetMessages 获取可见留言列表
func (s *GuestbookService) GetMessages(ctx context.Context, page, limit int) (*model.PaginatedMessages, error) {
	messages, err := s.guestbookRepo.GetVisibleMessages(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.guestbookRepo.CountVisibleMessages(ctx)
	if err != nil {
		return nil, err
	}
	return &model.PaginatedMessages{Total: total, Items: messages}, nil
}

// GetAllMessages 获取全部留言（管理后台，含已隐藏）
func (s *GuestbookService) GetAllMessages(ctx context.Context, page, limit int) (*model.PaginatedMessages, error) {
	messages, err := s.guestbookRepo.GetAllMessages(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.guestbookRepo.CountMessages(ctx)
	if err != nil {
		return nil, err
	}
	return &model.PaginatedMessages{Total: total, Items: messages}, nil
}

// ReplyMessage 回复留言
func (s *GuestbookService) ReplyMessage(ctx context.Context, id int64, reply string) error {
	msg, err := s.guestbookRepo.GetMessageByID(ctx, id)
	if err != nil || msg == nil {
		return errors.New(constants.ErrMessageNotFound)
	}
	return s.guestbookRepo.ReplyMessage(ctx, id, reply)
}

// SetMessageVisible 显示/隐藏留言
func (s *GuestbookService) SetMessageVisible(ctx context.Context, id int64, visible bool) error {
	return s.guestbookRepo.SetMessageVisible(ctx, id, visible)
}

// DeleteMessage 删除留言
func (s *GuestbookService) DeleteMessage(ctx context.Context, id int64) error {
	return s.guestbookRepo.DeleteMessage(ctx, id)
}
