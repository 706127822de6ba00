package model

import (
	"time"
)

// QuizQuestion 趣味答题题目模型
// Options字段在数据库中存JSON数组字符串，例如 ["选项A","选项B"]
type QuizQuestion struct {
	ID        int64     `db:"id" json:"id"`
	Question  string    `db:"question" json:"question"`
	Options   string    `db:"options" json:"-"`
	Answer    int       `db:"answer" json:"-"` // 正确选项下标，不直接下发
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// QuizQuestionView 下发给前端的题目，不带答案
type QuizQuestionView struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Category string   `json:"category"`
}

// QuizAnswerResult 答题结果
type QuizAnswerResult struct {
	Correct bool `json:"correct"`
	Answer  int  `json:"answer"` // 正确选项下标
	Score   int  `json:"score"`  // 当日累计得分
}
