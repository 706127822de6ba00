package service

import (
	"testing"

	"starweb/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateQuestion(t *testing.T) {
	q := &model.QuizQuestion{
		Question: "Go的并发原语是什么？",
		Options:  `["goroutine","thread","process"]`,
		Answer:   0,
	}
	assert.NoError(t, validateQuestion(q))

	// 答案下标越界
	q.Answer = 3
	assert.Error(t, validateQuestion(q))
	q.Answer = -1
	assert.Error(t, validateQuestion(q))

	// 选项不是合法JSON数组
	q.Answer = 0
	q.Options = "goroutine,thread"
	assert.Error(t, validateQuestion(q))

	// 少于两个选项
	q.Options = `["only"]`
	assert.Error(t, validateQuestion(q))
}

func TestValidateProduct(t *testing.T) {
	p := &model.Product{
		Name:  "激活码",
		Price: decimal.RequireFromString("9.9"),
		Type:  model.ProductTypeCardKey,
	}
	assert.NoError(t, validateProduct(p))

	// 会员商品必须有时长
	p.Type = model.ProductTypeMembership
	assert.Error(t, validateProduct(p))
	p.DurationDays = 30
	assert.NoError(t, validateProduct(p))

	// 价格必须为正
	p.Price = decimal.Zero
	assert.Error(t, validateProduct(p))

	// 未知商品类型
	p.Price = decimal.RequireFromString("1")
	p.Type = "subscription"
	assert.Error(t, validateProduct(p))

	// 名称必填
	p.Type = model.ProductTypeCardKey
	p.Name = ""
	assert.Error(t, validateProduct(p))
}
