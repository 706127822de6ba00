package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/repository"
	"starweb/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// 答题Redis键，按自然日滚动
const (
	quizScoreKeyFmt    = "quiz:score:%s:%d"    // 日期:用户ID -> 当日得分
	quizAnsweredKeyFmt = "quiz:answered:%s:%d" // 日期:用户ID -> 当日已答题目集合
	quizScorePerHit    = 10
)

// QuizService 趣味答题服务
type QuizService struct {
	quizRepo    *repository.QuizRepository
	redisClient *redis.Client
	logger      *logger.Logger
}

// NewQuizService 创建答题服务实例
func NewQuizService(quizRepo *repository.QuizRepository, redisClient *redis.Client, logger *logger.Logger) *QuizService {
	return &QuizService{
		quizRepo:    quizRepo,
		redisClient: redisClient,
		logger:      logger,
	}
}

// GetQuestions 随机抽取题目，选项以JSON数组存库，下发前解析且不带答案
func (s *QuizService) GetQuestions(ctx context.Context, category string, count int) ([]model.QuizQuestionView, error) {
	if count <= 0 || count > 20 {
		count = 5
	}

	questions, err := s.quizRepo.GetRandomQuestions(ctx, category, count)
	if err != nil {
		return nil, err
	}

	views := make([]model.QuizQuestionView, 0, len(questions))
	for i := range questions {
		var options []string
		if err := json.Unmarshal([]byte(questions[i].Options), &options); err != nil {
			s.logger.Error("题目选项解析失败", "question_id", questions[i].ID, "error", err)
			continue
		}
		views = append(views, model.QuizQuestionView{
			ID:       questions[i].ID,
			Question: questions[i].Question,
			Options:  options,
			Category: questions[i].Category,
		})
	}
	return views, nil
}

// SubmitAnswer 提交答案
// 同一用户同一题每天只计一次分，重复提交返回错误
func (s *QuizService) SubmitAnswer(ctx context.Context, userID, questionID int64, answer int) (*model.QuizAnswerResult, error) {
	question, err := s.quizRepo.GetQuestionByID(ctx, questionID)
	if err != nil || question == nil {
		return nil, errors.New(constants.ErrQuestionNotFound)
	}

	day := time.Now().Format("20060102")
	answeredKey := fmt.Sprintf(quizAnsweredKeyFmt, day, userID)
	added, err := s.redisClient.SAdd(ctx, answeredKey, questionID).Result()
	if err != nil {
		return nil, err
	}
	s.redisClient.Expire(ctx, answeredKey, 48*time.Hour)
	if added == 0 {
		return nil, errors.New(constants.ErrAnsweredToday)
	}

	scoreKey := fmt.Sprintf(quizScoreKeyFmt, day, userID)
	correct := answer == question.Answer
	var score int64
	if correct {
		score, err = s.redisClient.IncrBy(ctx, scoreKey, quizScorePerHit).Result()
		if err != nil {
			return nil, err
		}
		s.redisClient.Expire(ctx, scoreKey, 48*time.Hour)
	} else {
		raw, _ := s.redisClient.Get(ctx, scoreKey).Result()
		score, _ = strconv.ParseInt(raw, 10, 64)
	}

	return &model.QuizAnswerResult{
		Correct: correct,
		Answer:  question.Answer,
		Score:   int(score),
	}, nil
}

// GetTodayScore 查询用户当日得分
func (s *QuizService) GetTodayScore(ctx context.Context, userID int64) (int, error) {
	scoreKey := fmt.Sprintf(quizScoreKeyFmt, time.Now().Format("20060102"), userID)
	raw, err := s.redisClient.Get(ctx, scoreKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	score, _ := strconv.ParseInt(raw, 10, 64)
	return int(score), nil
}

// ListQuestions 分页获取题目列表（管理后台）
func (s *QuizService) ListQuestions(ctx context.Context, page, limit int) ([]model.QuizQuestion, int64, error) {
	questions, err := s.quizRepo.ListQuestions(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.quizRepo.CountQuestions(ctx)
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// CreateQuestion 创建题目，校验选项JSON与答案下标
func (s *QuizService) CreateQuestion(ctx context.Context, question *model.QuizQuestion) error {
	if err := validateQuestion(question); err != nil {
		return err
	}
	return s.quizRepo.CreateQuestion(ctx, question)
}

// UpdateQuestion 更新题目
func (s *QuizService) UpdateQuestion(ctx context.Context, question *model.QuizQuestion) error {
	if err := validateQuestion(question); err != nil {
		return err
	}
	return s.quizRepo.UpdateQuestion(ctx, question)
}

// DeleteQuestion 删除题目
func (s *QuizService) DeleteQuestion(ctx context.Context, id int64) error {
	return s.quizRepo.DeleteQuestion(ctx, id)
}

// validateQuestion 校验选项为合法JSON数组且答案下标在范围内
func validateQuestion(question *model.QuizQuestion) error {
	var options []string
	if err := json.Unmarshal([]byte(question.Options), &options); err != nil || len(options) < 2 {
		return errors.New(constants.ErrInvalidFormat)
	}
	if question.Answer < 0 || question.Answer >= len(options) {
		return errors.New(constants.ErrInvalidParams)
	}
	return nil
}
