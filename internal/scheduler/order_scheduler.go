package scheduler

import (
	"context"
	"time"

	"starweb/internal/repository"
	"starweb/pkg/logger"
)

// OrderScheduler 订单调度器，定时取消超时未支付的订单
type OrderScheduler struct {
	orderRepo     repository.OrderRepository
	expireMinutes int
	logger        *logger.Logger
	quit          chan struct{}
}

// NewOrderScheduler 创建订单调度器实例
func NewOrderScheduler(orderRepo repository.OrderRepository, expireMinutes int, logger *logger.Logger) *OrderScheduler {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &OrderScheduler{
		orderRepo:     orderRepo,
		expireMinutes: expireMinutes,
		logger:        logger,
		quit:          make(chan struct{}),
	}
}

// Start 启动订单调度器
func (s *OrderScheduler) Start() {
	go s.cancelExpiredScheduler()
	s.logger.Info("订单调度器启动", "expire_minutes", s.expireMinutes)
}

// Stop 停止订单调度器
func (s *OrderScheduler) Stop() {
	close(s.quit)
	s.logger.Info("订单调度器停止")
}

// cancelExpiredScheduler 超时订单取消定时器
func (s *OrderScheduler) cancelExpiredScheduler() {
	// 立即运行一次
	s.cancelExpired()

	// 每分钟检查一次
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cancelExpired()
		case <-s.quit:
			return
		}
	}
}

// cancelExpired 取消创建时间超过有效期的待支付订单
func (s *OrderScheduler) cancelExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	before := time.Now().Add(-time.Duration(s.expireMinutes) * time.Minute)
	cancelled, err := s.orderRepo.CancelExpired(ctx, before)
	if err != nil {
		s.logger.Error("取消超时订单失败", "error", err)
		return
	}
	if cancelled > 0 {
		s.logger.Info("已取消超时订单", "count", cancelled)
	}
}
