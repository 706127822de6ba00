package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"starweb/internal/repository"
	"starweb/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockOrderRepo struct {
	mock.Mock
	repository.OrderRepository
}

func (m *mockOrderRepo) CancelExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func TestCancelExpiredCutoff(t *testing.T) {
	repo := new(mockOrderRepo)
	s := NewOrderScheduler(repo, 30, logger.NewLogger("error"))

	// 截止时间是当前时间往前推有效期，只有更早创建的待支付订单会被取消
	repo.On("CancelExpired", mock.Anything, mock.MatchedBy(func(before time.Time) bool {
		expected := time.Now().Add(-30 * time.Minute)
		return before.After(expected.Add(-5*time.Second)) && !before.After(expected)
	})).Return(int64(2), nil)

	s.cancelExpired()
	repo.AssertExpectations(t)
}

func TestCancelExpiredRepoError(t *testing.T) {
	repo := new(mockOrderRepo)
	s := NewOrderScheduler(repo, 30, logger.NewLogger("error"))

	repo.On("CancelExpired", mock.Anything, mock.Anything).Return(int64(0), errors.New("db gone"))

	// 清理失败只记日志，下个周期重试
	s.cancelExpired()
	repo.AssertExpectations(t)
}

func TestNewOrderSchedulerDefaultExpiry(t *testing.T) {
	s := NewOrderScheduler(new(mockOrderRepo), 0, logger.NewLogger("error"))
	assert.Equal(t, 30, s.expireMinutes)
}
