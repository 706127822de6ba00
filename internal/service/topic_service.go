package service

import (
	"context"
	"errors"
	"fmt"

	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// 话题投票去重集合，成员为用户ID
const topicVotersKeyFmt = "topic:voters:%d"

// TopicStore 话题存储
type TopicStore interface {
	ListTopicsByVotes(ctx context.Context) ([]model.Topic, error)
	GetTopicByID(ctx context.Context, id int64) (*model.Topic, error)
	IncrementVotes(ctx context.Context, id int64) (bool, error)
	CreateTopic(ctx context.Context, topic *model.Topic) error
	SetTopicStatus(ctx context.Context, id int64, status int) error
	DeleteTopic(ctx context.Context, id int64) error
}

// VoterSet 话题投票去重集合
type VoterSet interface {
	Add(ctx context.Context, topicID, userID int64) (bool, error)
	Remove(ctx context.Context, topicID, userID int64) error
	Contains(ctx context.Context, topicID, userID int64) (bool, error)
	Clear(ctx context.Context, topicID int64) error
}

// redisVoterSet 基于Redis集合的投票去重实现
type redisVoterSet struct {
	client *redis.Client
}

func (v *redisVoterSet) Add(ctx context.Context, topicID, userID int64) (bool, error) {
	added, err := v.client.SAdd(ctx, fmt.Sprintf(topicVotersKeyFmt, topicID), userID).Result()
	return added > 0, err
}

func (v *redisVoterSet) Remove(ctx context.Context, topicID, userID int64) error {
	return v.client.SRem(ctx, fmt.Sprintf(topicVotersKeyFmt, topicID), userID).Err()
}

func (v *redisVoterSet) Contains(ctx context.Context, topicID, userID int64) (bool, error) {
	return v.client.SIsMember(ctx, fmt.Sprintf(topicVotersKeyFmt, topicID), userID).Result()
}

func (v *redisVoterSet) Clear(ctx context.Context, topicID int64) error {
	return v.client.Del(ctx, fmt.Sprintf(topicVotersKeyFmt, topicID)).Err()
}

// TopicService 热门话题服务
type TopicService struct {
	topicRepo TopicStore
	voters    VoterSet
	logger    *logger.Logger
}

// NewTopicService 创建话题服务实例
func NewTopicService(topicRepo TopicStore, redisClient *redis.Client, logger *logger.Logger) *TopicService {
	return &TopicService{
		topicRepo: topicRepo,
		voters:    &redisVoterSet{client: redisClient},
		logger:    logger,
	}
}

// ListTopics 按票数降序获取话题列表
func (s *TopicService) ListTopics(ctx context.Context) ([]model.Topic, error) {
	return s.topicRepo.ListTopicsByVotes(ctx)
}

// Vote 给话题投票
// 去重集合做用户级去重，数据库条件更新保证只给开放中的话题计票；
// 计票失败时回滚去重记录，用户可以重投
func (s *TopicService) Vote(ctx context.Context, topicID, userID int64) error {
	topic, err := s.topicRepo.GetTopicByID(ctx, topicID)
	if err != nil || topic == nil {
		return errors.New(constants.ErrTopicNotFound)
	}
	if topic.Status != model.TopicStatusOpen {
		return errors.New(constants.ErrTopicClosed)
	}

	added, err := s.voters.Add(ctx, topicID, userID)
	if err != nil {
		return err
	}
	if !added {
		return errors.New(constants.ErrAlreadyVoted)
	}

	counted, err := s.topicRepo.IncrementVotes(ctx, topicID)
	if err != nil {
		if rbErr := s.voters.Remove(ctx, topicID, userID); rbErr != nil {
			s.logger.Warn("回滚投票记录失败", "topic_id", topicID, "user_id", userID, "error", rbErr)
		}
		return err
	}
	if !counted {
		// 并发下话题刚被关闭
		if rbErr := s.voters.Remove(ctx, topicID, userID); rbErr != nil {
			s.logger.Warn("回滚投票记录失败", "topic_id", topicID, "user_id", userID, "error", rbErr)
		}
		return errors.New(constants.ErrTopicClosed)
	}
	return nil
}

// HasVoted 查询用户是否已给话题投票
func (s *TopicService) HasVoted(ctx context.Context, topicID, userID int64) (bool, error) {
	return s.voters.Contains(ctx, topicID, userID)
}

// CreateTopic 创建话题（管理后台）
func (s *TopicService) CreateTopic(ctx context.Context, topic *model.Topic) error {
	topic.Status = model.TopicStatusOpen
	return s.topicRepo.CreateTopic(ctx, topic)
}

// SetTopicStatus 开放/关闭话题投票
func (s *TopicService) SetTopicStatus(ctx context.Context, id int64, status int) error {
	if status != model.TopicStatusOpen && status != model.TopicStatusClosed {
		return errors.New(constants.ErrInvalidParams)
	}
	return s.topicRepo.SetTopicStatus(ctx, id, status)
}

// DeleteTopic 删除话题并清理投票记录
func (s *TopicService) DeleteTopic(ctx context.Context, id int64) error {
	if err := s.topicRepo.DeleteTopic(ctx, id); err != nil {
		return err
	}
	if err := s.voters.Clear(ctx, id); err != nil {
		s.logger.Warn("清理投票记录失败", "topic_id", id, "error", err)
	}
	return nil
}
