package repository

import (
	"context"
	"database/sql"
	"errors"
	"starweb/internal/model"

	"github.com/jmoiron/sqlx"
)

// QuizRepository 趣味答题存储库
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository 创建趣味答题存储库实例
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// GetRandomQuestions 随机获取N道题目
func (r *QuizRepository) GetRandomQuestions(ctx context.Context, category string, count int) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	// 题库规模很小，ORDER BY RAND()足够
	if category != "" {
		query := `SELECT * FROM quiz_questions WHERE category = ? ORDER BY RAND() LIMIT ?`
		err := r.db.SelectContext(ctx, &questions, query, category, count)
		return questions, err
	}
	query := `SELECT * FROM quiz_questions ORDER BY RAND() LIMIT ?`
	err := r.db.SelectContext(ctx, &questions, query, count)
	return questions, err
}

// GetQuestionByID 根据ID获取题目
func (r *QuizRepository) GetQuestionByID(ctx context.Context, id int64) (*model.QuizQuestion, error) {
	var question model.QuizQuestion
	err := r.db.GetContext(ctx, &question, `SELECT * FROM quiz_questions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// ListQuestions 分页获取题目列表
func (r *QuizRepository) ListQuestions(ctx context.Context, page, limit int) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	offset := (page - 1) * limit
	query := `SELECT * FROM quiz_questions ORDER BY id DESC LIMIT ? OFFSET ?`
	err := r.db.SelectContext(ctx, &questions, query, limit, offset)
	return questions, err
}

// CountQuestions 获取题目总数
func (r *QuizRepository) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM quiz_questions`)
	return count, err
}

// CreateQuestion 创建题目
func (r *QuizRepository) CreateQuestion(ctx context.Context, question *model.QuizQuestion) error {
	query := `
		INSERT INTO quiz_questions (question, options, answer, category, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`
	result, err := r.db.ExecContext(ctx, query, question.Question, question.Options, question.Answer, question.Category)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	question.ID = id
	return nil
}

// UpdateQuestion 更新题目
func (r *QuizRepository) UpdateQuestion(ctx context.Context, question *model.QuizQuestion) error {
	query := `UPDATE quiz_questions SET question = ?, options = ?, answer = ?, category = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, question.Question, question.Options, question.Answer, question.Category, question.ID)
	return err
}

// DeleteQuestion 删除题目
func (r *QuizRepository) DeleteQuestion(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM quiz_questions WHERE id = ?`, id)
	return err
}
