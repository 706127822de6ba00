package scheduler

import (
	"context"
	"time"

	"starweb/internal/service"
	"starweb/pkg/logger"
)

// ViewsScheduler 浏览量调度器，定时把Redis里的浏览量增量回写数据库
type ViewsScheduler struct {
	postService *service.PostService
	logger      *logger.Logger
	quit        chan struct{}
}

// NewViewsScheduler 创建浏览量调度器实例
func NewViewsScheduler(postService *service.PostService, logger *logger.Logger) *ViewsScheduler {
	return &ViewsScheduler{
		postService: postService,
		logger:      logger,
		quit:        make(chan struct{}),
	}
}

// Start 启动浏览量调度器
func (s *ViewsScheduler) Start() {
	go s.flushViewsScheduler()
	s.logger.Info("浏览量调度器启动")
}

// Stop 停止浏览量调度器，停前回写一次
func (s *ViewsScheduler) Stop() {
	close(s.quit)
	s.flushViews()
	s.logger.Info("浏览量调度器停止")
}

// flushViewsScheduler 浏览量回写定时器
func (s *ViewsScheduler) flushViewsScheduler() {
	// 每5分钟回写一次
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flushViews()
		case <-s.quit:
			return
		}
	}
}

// flushViews 执行一次回写
func (s *ViewsScheduler) flushViews() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.postService.FlushViews(ctx); err != nil {
		s.logger.Error("回写浏览量失败", "error", err)
	}
}
