package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTopicStore struct {
	mock.Mock
}

func (m *mockTopicStore) ListTopicsByVotes(ctx context.Context) ([]model.Topic, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Topic), args.Error(1)
}

func (m *mockTopicStore) GetTopicByID(ctx context.Context, id int64) (*model.Topic, error) {
	args := m.Called(ctx, id)
	topic, _ := args.Get(0).(*model.Topic)
	return topic, args.Error(1)
}

func (m *mockTopicStore) IncrementVotes(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockTopicStore) CreateTopic(ctx context.Context, topic *model.Topic) error {
	return m.Called(ctx, topic).Error(0)
}

func (m *mockTopicStore) SetTopicStatus(ctx context.Context, id int64, status int) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockTopicStore) DeleteTopic(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// memoryVoterSet 内存版投票去重集合
type memoryVoterSet struct {
	members map[string]struct{}
}

func newMemoryVoterSet() *memoryVoterSet {
	return &memoryVoterSet{members: map[string]struct{}{}}
}

func (v *memoryVoterSet) key(topicID, userID int64) string {
	return fmt.Sprintf("%d:%d", topicID, userID)
}

func (v *memoryVoterSet) Add(_ context.Context, topicID, userID int64) (bool, error) {
	k := v.key(topicID, userID)
	if _, ok := v.members[k]; ok {
		return false, nil
	}
	v.members[k] = struct{}{}
	return true, nil
}

func (v *memoryVoterSet) Remove(_ context.Context, topicID, userID int64) error {
	delete(v.members, v.key(topicID, userID))
	return nil
}

func (v *memoryVoterSet) Contains(_ context.Context, topicID, userID int64) (bool, error) {
	_, ok := v.members[v.key(topicID, userID)]
	return ok, nil
}

func (v *memoryVoterSet) Clear(_ context.Context, topicID int64) error {
	for k := range v.members {
		var tid, uid int64
		if _, err := fmt.Sscanf(k, "%d:%d", &tid, &uid); err == nil && tid == topicID {
			delete(v.members, k)
		}
	}
	return nil
}

func newTestTopicService(store *mockTopicStore, voters VoterSet) *TopicService {
	return &TopicService{
		topicRepo: store,
		voters:    voters,
		logger:    logger.NewLogger("error"),
	}
}

func openTopic() *model.Topic {
	return &model.Topic{ID: 1, Title: "下一期出什么内容", Status: model.TopicStatusOpen}
}

func TestVoteCountsOnce(t *testing.T) {
	store := new(mockTopicStore)
	voters := newMemoryVoterSet()
	svc := newTestTopicService(store, voters)

	store.On("GetTopicByID", mock.Anything, int64(1)).Return(openTopic(), nil)
	store.On("IncrementVotes", mock.Anything, int64(1)).Return(true, nil).Once()

	require.NoError(t, svc.Vote(context.Background(), 1, 7))

	voted, err := svc.HasVoted(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, voted)

	// 同一用户重投被去重，不再触发计票
	err = svc.Vote(context.Background(), 1, 7)
	assert.EqualError(t, err, constants.ErrAlreadyVoted)
	store.AssertNumberOfCalls(t, "IncrementVotes", 1)
}

func TestVoteClosedTopic(t *testing.T) {
	store := new(mockTopicStore)
	voters := newMemoryVoterSet()
	svc := newTestTopicService(store, voters)

	closed := openTopic()
	closed.Status = model.TopicStatusClosed
	store.On("GetTopicByID", mock.Anything, int64(1)).Return(closed, nil)

	err := svc.Vote(context.Background(), 1, 7)
	assert.EqualError(t, err, constants.ErrTopicClosed)

	// 关闭的话题连去重集合都不写
	voted, _ := voters.Contains(context.Background(), 1, 7)
	assert.False(t, voted)
	store.AssertNotCalled(t, "IncrementVotes", mock.Anything, mock.Anything)
}

func TestVoteRollbackWhenClosedMidVote(t *testing.T) {
	store := new(mockTopicStore)
	voters := newMemoryVoterSet()
	svc := newTestTopicService(store, voters)

	// 读到开放，计票时已被关闭（条件更新未命中）
	store.On("GetTopicByID", mock.Anything, int64(1)).Return(openTopic(), nil)
	store.On("IncrementVotes", mock.Anything, int64(1)).Return(false, nil)

	err := svc.Vote(context.Background(), 1, 7)
	assert.EqualError(t, err, constants.ErrTopicClosed)

	// 去重记录被回滚，话题重新开放后用户可以重投
	voted, _ := voters.Contains(context.Background(), 1, 7)
	assert.False(t, voted)
}

func TestVoteRollbackOnCountError(t *testing.T) {
	store := new(mockTopicStore)
	voters := newMemoryVoterSet()
	svc := newTestTopicService(store, voters)

	store.On("GetTopicByID", mock.Anything, int64(1)).Return(openTopic(), nil)
	store.On("IncrementVotes", mock.Anything, int64(1)).Return(false, errors.New("db gone")).Once()

	err := svc.Vote(context.Background(), 1, 7)
	assert.Error(t, err)

	voted, _ := voters.Contains(context.Background(), 1, 7)
	assert.False(t, voted)

	// 回滚后重投可以成功
	store.On("IncrementVotes", mock.Anything, int64(1)).Return(true, nil).Once()
	require.NoError(t, svc.Vote(context.Background(), 1, 7))
}

func TestVoteUnknownTopic(t *testing.T) {
	store := new(mockTopicStore)
	svc := newTestTopicService(store, newMemoryVoterSet())

	store.On("GetTopicByID", mock.Anything, int64(99)).Return(nil, nil)

	err := svc.Vote(context.Background(), 99, 7)
	assert.EqualError(t, err, constants.ErrTopicNotFound)
}
