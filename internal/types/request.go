package types

// SendMessageRequest 发送验证码请求
type SendMessageRequest struct {
	Email string `json:"email" binding:"required"`
	Type  string `json:"type" binding:"required,oneof=register reset_password"`
	// 极验验证参数
	LotNumber     string `json:"lot_number"`
	CaptchaOutput string `json:"captcha_output"`
	PassToken     string `json:"pass_token"`
	GenTime       string `json:"gen_time"`
	// 验证对象，用于兼容前端传递的验证参数
	Validate *ValidateParams `json:"validate"`
}

// ValidateParams 验证参数对象
type ValidateParams struct {
	CaptchaID     string `json:"captcha_id"`
	LotNumber     string `json:"lot_number"`
	PassToken     string `json:"pass_token"`
	GenTime       string `json:"gen_time"`
	CaptchaOutput string `json:"captcha_output"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Email    string `json:"email" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PostMessageRequest 发布留言请求
type PostMessageRequest struct {
	Nickname string `json:"nickname" binding:"required,max=32"`
	Email    string `json:"email"`
	Content  string `json:"content" binding:"required,max=500"`
	// 极验验证参数
	Validate *ValidateParams `json:"validate" binding:"required"`
}

// SubmitAnswerRequest 提交答案请求
type SubmitAnswerRequest struct {
	QuestionID int64 `json:"question_id" binding:"required"`
	Answer     *int  `json:"answer" binding:"required"` // 选项下标，0为合法值所以用指针
}

// CheckoutRequest 下单请求
type CheckoutRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Channel   string `json:"channel" binding:"required"`
}

// PostRequest 创建/更新文章请求
type PostRequest struct {
	Title       string `json:"title" binding:"required"`
	Category    string `json:"category"`
	Tags        string `json:"tags"`
	Content     string `json:"content" binding:"required"`
	IsPublished bool   `json:"is_published"`
}

// QuestionRequest 创建/更新题目请求
type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	Options  string `json:"options" binding:"required"` // JSON数组字符串
	Answer   *int   `json:"answer" binding:"required"`
	Category string `json:"category"`
}

// TopicRequest 创建话题请求
type TopicRequest struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
}

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Price        string `json:"price" binding:"required"` // 十进制字符串，避免浮点误差
	Type         string `json:"type" binding:"required,oneof=card_key membership"`
	DurationDays int    `json:"duration_days"`
	IsActive     bool   `json:"is_active"`
}

// ImportKeysRequest 导入卡密请求
type ImportKeysRequest struct {
	Keys  string `json:"keys"`  // 一行一条
	Count int    `json:"count"` // Keys为空时自动生成的数量
}

// ChannelUpdateRequest 更新支付渠道请求
type ChannelUpdateRequest struct {
	Enabled bool              `json:"enabled"`
	Config  map[string]string `json:"config"`
}

// ReplyRequest 回复留言请求
type ReplyRequest struct {
	Reply string `json:"reply" binding:"required"`
}
