package scheduler

import (
	"context"
	"time"

	"starweb/internal/repository"
	"starweb/pkg/logger"
)

// MembershipScheduler 会员调度器，定时停用到期会员
type MembershipScheduler struct {
	membershipRepo repository.MembershipRepository
	logger         *logger.Logger
	quit           chan struct{}
}

// NewMembershipScheduler 创建会员调度器实例
func NewMembershipScheduler(membershipRepo repository.MembershipRepository, logger *logger.Logger) *MembershipScheduler {
	return &MembershipScheduler{
		membershipRepo: membershipRepo,
		logger:         logger,
		quit:           make(chan struct{}),
	}
}

// Start 启动会员调度器
func (s *MembershipScheduler) Start() {
	go s.deactivateExpiredScheduler()
	s.logger.Info("会员调度器启动")
}

// Stop 停止会员调度器
func (s *MembershipScheduler) Stop() {
	close(s.quit)
	s.logger.Info("会员调度器停止")
}

// deactivateExpiredScheduler 到期会员停用定时器
func (s *MembershipScheduler) deactivateExpiredScheduler() {
	// 立即运行一次
	s.deactivateExpired()

	// 每小时检查一次
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deactivateExpired()
		case <-s.quit:
			return
		}
	}
}

// deactivateExpired 停用已到期的会员
func (s *MembershipScheduler) deactivateExpired() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deactivated, err := s.membershipRepo.DeactivateExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("停用到期会员失败", "error", err)
		return
	}
	if deactivated > 0 {
		s.logger.Info("已停用到期会员", "count", deactivated)
	}
}
