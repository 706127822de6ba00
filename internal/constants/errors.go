package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"
	ErrAccountDisabled        = "账号已被禁用"

	// 用户相关错误
	ErrUserNotFound      = "用户不存在"
	ErrAuthFailed        = "用户不存在或认证失败"
	ErrUsernameEmpty     = "用户名不能为空"
	ErrPasswordIncorrect = "密码错误"
	ErrUsernameExists    = "用户名已存在"
	ErrEmailExists       = "该邮箱已被注册"
	ErrVerifyCodeWrong   = "验证码错误或已过期"
	ErrCaptchaFailed     = "人机验证未通过"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidFormat  = "格式错误"
	ErrInvalidRequest = "无效请求格式"

	// 内容相关错误
	ErrPostNotFound     = "文章不存在"
	ErrMessageNotFound  = "留言不存在"
	ErrQuestionNotFound = "题目不存在"
	ErrTopicNotFound    = "话题不存在"
	ErrTopicClosed      = "话题已关闭投票"
	ErrAlreadyVoted     = "您已经投过票了"
	ErrAnsweredToday    = "今天已经答过这道题了"

	// 商城相关错误
	ErrProductNotFound    = "商品不存在"
	ErrProductInactive    = "商品已下架"
	ErrProductOutOfStock  = "商品库存不足"
	ErrOrderNotFound      = "订单不存在"
	ErrOrderStatusInvalid = "订单状态不允许该操作"
	ErrChannelNotFound    = "支付渠道不存在"
	ErrChannelDisabled    = "支付渠道未启用"
	ErrChannelConfig      = "支付渠道配置不完整"
	ErrPayCreateFailed    = "创建支付失败，请稍后重试"
	ErrNotifyVerifyFailed = "回调签名验证失败"

	// 系统错误
	ErrInternalServer       = "服务器内部错误"
	ErrOperationTooFrequent = "请求过于频繁，请稍后重试"
)

// 成功消息
const (
	SuccessLogin    = "登录成功"
	SuccessRegister = "注册成功"
	SuccessCreate   = "创建成功"
	SuccessUpdate   = "更新成功"
	SuccessDelete   = "删除成功"
)
