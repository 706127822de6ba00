package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"starweb/config"
	"starweb/internal/constants"
	"starweb/internal/model"
	"starweb/internal/payment"
	"starweb/internal/repository"
	"starweb/pkg/async"
	"starweb/pkg/email"
	"starweb/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ProductReader 支付服务需要的商品读取能力
type ProductReader interface {
	GetProductByID(ctx context.Context, id int64) (*model.Product, error)
}

// ChannelStore 支付服务需要的渠道配置存取能力
type ChannelStore interface {
	GetChannels(ctx context.Context) ([]model.PaymentChannel, error)
	GetChannelByCode(ctx context.Context, code string) (*model.PaymentChannel, error)
	UpsertChannel(ctx context.Context, channel *model.PaymentChannel) error
	SetChannelEnabled(ctx context.Context, code string, enabled bool) error
}

// ChannelView 渠道信息（管理后台/收银台展示用）
type ChannelView struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Enabled        bool     `json:"enabled"`
	Configured     bool     `json:"configured"`
	RequiredFields []string `json:"required_fields"`
}

// CheckoutResult 下单结果
type CheckoutResult struct {
	OrderNo string                `json:"order_no"`
	Amount  string                `json:"amount"`
	Channel string                `json:"channel"`
	Pay     *payment.CreateResult `json:"pay"`
}

// PaymentService 支付服务
// 负责下单、渠道管理、异步通知处理与发货。
// 通知处理流程：适配器验签 -> 金额核对 -> 条件更新 pending->paid -> 发货，
// 任何一步失败都不会动订单状态，供应商会按各自策略重试
type PaymentService struct {
	orderRepo      repository.OrderRepository
	keyRepo        repository.ProductKeyRepository
	membershipRepo repository.MembershipRepository
	productRepo    ProductReader
	channelRepo    ChannelStore
	userSvc        UserService
	redisClient    *redis.Client
	worker         *async.Worker
	emailSvc       *email.Service
	logger         *logger.Logger
	cfg            *config.Config

	gateways    map[string]payment.Gateway
	testGateway *payment.TestGateway
}

// NewPaymentService 创建支付服务实例
func NewPaymentService(
	orderRepo repository.OrderRepository,
	keyRepo repository.ProductKeyRepository,
	membershipRepo repository.MembershipRepository,
	productRepo ProductReader,
	channelRepo ChannelStore,
	userSvc UserService,
	redisClient *redis.Client,
	worker *async.Worker,
	emailSvc *email.Service,
	logger *logger.Logger,
	cfg *config.Config,
) *PaymentService {
	s := &PaymentService{
		orderRepo:      orderRepo,
		keyRepo:        keyRepo,
		membershipRepo: membershipRepo,
		productRepo:    productRepo,
		channelRepo:    channelRepo,
		userSvc:        userSvc,
		redisClient:    redisClient,
		worker:         worker,
		emailSvc:       emailSvc,
		logger:         logger,
		cfg:            cfg,
		gateways:       make(map[string]payment.Gateway),
	}

	// 适配器常驻，配置通过ConfigGetter在每次调用时取最新值
	s.gateways[payment.CodeWechat] = payment.NewWechatGateway(s.channelConfig(payment.CodeWechat))
	s.gateways[payment.CodeAlipay] = payment.NewAlipayGateway(s.channelConfig(payment.CodeAlipay))
	s.gateways[payment.CodeEpay] = payment.NewEpayGateway(s.channelConfig(payment.CodeEpay))
	s.gateways[payment.CodeXunhupay] = payment.NewXunhupayGateway(s.channelConfig(payment.CodeXunhupay))

	if cfg.Payment.TestPayEnabled {
		s.testGateway = payment.NewTestGateway(cfg.Payment.TestPayDelay)
		// 测试支付到点自动翻单后直接走与真实渠道相同的结算路径
		s.testGateway.SetOnPaid(s.onTestPaid)
		s.gateways[payment.CodeTest] = s.testGateway
	}

	return s
}

// channelConfig 构造渠道配置读取器
// 优先读payment_channels表里的JSON配置，缺失的键回退到环境变量
func (s *PaymentService) channelConfig(code string) payment.ConfigGetter {
	return func(ctx context.Context) (map[string]string, error) {
		merged := s.envConfig(code)

		channel, err := s.channelRepo.GetChannelByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if channel != nil && channel.Config != "" {
			var dbConfig map[string]string
			if err := json.Unmarshal([]byte(channel.Config), &dbConfig); err != nil {
				return nil, fmt.Errorf("渠道配置解析失败: %w", err)
			}
			for k, v := range dbConfig {
				if v != "" {
					merged[k] = v
				}
			}
		}
		return merged, nil
	}
}

// envConfig 环境变量里的渠道配置
func (s *PaymentService) envConfig(code string) map[string]string {
	p := s.cfg.Payment
	switch code {
	case payment.CodeWechat:
		return map[string]string{
			"app_id":  p.Wechat.AppID,
			"mch_id":  p.Wechat.MchID,
			"api_key": p.Wechat.APIKey,
		}
	case payment.CodeAlipay:
		return map[string]string{
			"app_id":      p.Alipay.AppID,
			"private_key": p.Alipay.PrivateKey,
			"public_key":  p.Alipay.PublicKey,
		}
	case payment.CodeEpay:
		return map[string]string{
			"api_url": p.Epay.APIURL,
			"pid":     p.Epay.PID,
			"key":     p.Epay.Key,
		}
	case payment.CodeXunhupay:
		return map[string]string{
			"api_url":    p.Xunhupay.APIURL,
			"app_id":     p.Xunhupay.AppID,
			"app_secret": p.Xunhupay.AppSecret,
		}
	}
	return map[string]string{}
}

// channelUsable 判断渠道当前是否可用于下单
func (s *PaymentService) channelUsable(ctx context.Context, code string) error {
	def := payment.GetChannelDef(code)
	if def == nil {
		return errors.New(constants.ErrChannelNotFound)
	}

	if code == payment.CodeTest {
		if !s.cfg.Payment.TestPayEnabled {
			return errors.New(constants.ErrChannelDisabled)
		}
		return nil
	}

	channel, err := s.channelRepo.GetChannelByCode(ctx, code)
	if err != nil {
		return err
	}
	// 数据库里有记录时以开关为准，没有记录时看环境变量凭据是否齐全
	if channel != nil {
		if !channel.Enabled {
			return errors.New(constants.ErrChannelDisabled)
		}
		return nil
	}

	cfg := s.envConfig(code)
	for _, field := range def.RequiredFields {
		if cfg[field] == "" {
			return errors.New(constants.ErrChannelDisabled)
		}
	}
	return nil
}

// genOrderNo 生成商户订单号
func genOrderNo() string {
	return fmt.Sprintf("SW%s%s",
		time.Now().Format("20060102150405"),
		uuid.NewString()[:8])
}

// Checkout 创建订单并发起支付
func (s *PaymentService) Checkout(ctx context.Context, userID, productID int64, channelCode, clientIP string) (*CheckoutResult, error) {
	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, errors.New(constants.ErrProductNotFound)
	}
	if !product.IsActive {
		return nil, errors.New(constants.ErrProductInactive)
	}

	// 卡密商品下单前检查库存，真正的独占分配在支付成功后
	if product.Type == model.ProductTypeCardKey {
		available, err := s.keyRepo.CountAvailable(ctx, productID)
		if err != nil {
			return nil, err
		}
		if available == 0 {
			return nil, errors.New(constants.ErrProductOutOfStock)
		}
	}

	if err := s.channelUsable(ctx, channelCode); err != nil {
		return nil, err
	}
	gw := s.gateways[channelCode]
	if gw == nil {
		return nil, errors.New(constants.ErrChannelNotFound)
	}

	order := &model.Order{
		OrderNo:     genOrderNo(),
		UserID:      userID,
		ProductID:   product.ID,
		ProductName: product.Name,
		Amount:      product.Price,
		Status:      model.OrderStatusPending,
		PayChannel:  channelCode,
	}
	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	result, err := gw.CreatePayment(ctx, &payment.CreateRequest{
		OrderNo:   order.OrderNo,
		Subject:   product.Name,
		Amount:    product.Price,
		ClientIP:  clientIP,
		NotifyURL: s.cfg.SiteURL + "/api/v1/pay/notify/" + channelCode,
		ReturnURL: s.cfg.SiteURL + "/shop/result?order_no=" + order.OrderNo,
	})
	if err != nil {
		s.logger.Error("发起支付失败", "order_no", order.OrderNo, "channel", channelCode, "error", err)
		return nil, errors.New(constants.ErrPayCreateFailed)
	}

	s.logger.Info("订单创建成功", "order_no", order.OrderNo, "user_id", userID,
		"product_id", productID, "channel", channelCode, "amount", product.Price.String())

	return &CheckoutResult{
		OrderNo: order.OrderNo,
		Amount:  product.Price.StringFixed(2),
		Channel: channelCode,
		Pay:     result,
	}, nil
}

// GetOrder 获取用户自己的订单
func (s *PaymentService) GetOrder(ctx context.Context, userID int64, orderNo string) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, errors.New(constants.ErrOrderNotFound)
	}
	return order, nil
}

// ListUserOrders 获取用户订单列表
func (s *PaymentService) ListUserOrders(ctx context.Context, userID int64, page, pageSize int) (*model.PaginatedOrders, error) {
	orders, total, err := s.orderRepo.GetOrdersByUserID(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &model.PaginatedOrders{Total: total, Items: orders}, nil
}

// ListOrders 获取订单列表（管理后台）
func (s *PaymentService) ListOrders(ctx context.Context, status, page, pageSize int) (*model.PaginatedOrders, error) {
	orders, total, err := s.orderRepo.ListOrders(ctx, status, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &model.PaginatedOrders{Total: total, Items: orders}, nil
}

// ProcessNotify 处理渠道异步通知，返回应答给供应商的Content-Type与响应体
func (s *PaymentService) ProcessNotify(ctx context.Context, channelCode string, r *http.Request) (string, string) {
	gw := s.gateways[channelCode]
	if gw == nil {
		return "text/plain; charset=utf-8", "fail"
	}

	notify, err := gw.VerifyNotify(ctx, r)
	if err != nil {
		s.logger.Warn("支付通知验签失败", "channel", channelCode, "error", err)
		return gw.FailAck(constants.ErrNotifyVerifyFailed)
	}
	if !notify.Succeeded {
		// 验签通过但交易未成功，确认收到即可，不改订单状态
		s.logger.Info("收到未成功的支付通知", "channel", channelCode, "order_no", notify.OrderNo)
		return gw.SuccessAck()
	}

	// 短锁压制同一订单的并发重试，真正的幂等由MarkPaid的条件更新保证
	lockKey := "pay:notify:lock:" + notify.OrderNo
	ok, err := s.redisClient.SetNX(ctx, lockKey, 1, 10*time.Second).Result()
	if err == nil && !ok {
		return gw.FailAck("处理中")
	}
	defer s.redisClient.Del(ctx, lockKey)

	if err := s.settle(ctx, channelCode, notify); err != nil {
		s.logger.Error("支付通知处理失败", "channel", channelCode,
			"order_no", notify.OrderNo, "error", err)
		return gw.FailAck(err.Error())
	}
	return gw.SuccessAck()
}

// settle 结算已验签的成功通知：核对金额、置为已支付并发货
func (s *PaymentService) settle(ctx context.Context, channelCode string, notify *payment.NotifyResult) error {
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, notify.OrderNo)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New(constants.ErrOrderNotFound)
	}

	// 金额不符直接拒绝，防止改包后的小额支付
	if notify.Amount.IsPositive() && !notify.Amount.Equal(order.Amount) {
		return fmt.Errorf("通知金额不符: 期望%s 实际%s", order.Amount.String(), notify.Amount.String())
	}

	paid, err := s.orderRepo.MarkPaid(ctx, order.OrderNo, channelCode, notify.ProviderTradeNo)
	if err != nil {
		return err
	}
	if !paid {
		// 条件更新没有命中，重新读取确认是重复通知还是异常状态
		current, err := s.orderRepo.GetOrderByOrderNo(ctx, order.OrderNo)
		if err != nil {
			return err
		}
		if current != nil && (current.Status == model.OrderStatusPaid || current.IsTerminal()) {
			if current.Status == model.OrderStatusCancelled {
				// 取消后迟到的支付：应答成功止住渠道重试，留给管理后台对账处理
				s.logger.Warn("已取消订单收到支付通知", "order_no", order.OrderNo,
					"channel", channelCode, "provider_trade_no", notify.ProviderTradeNo)
				return nil
			}
			// 已经处理过了，重复通知按成功应答
			return nil
		}
		return errors.New(constants.ErrOrderStatusInvalid)
	}

	s.logger.Info("订单支付成功", "order_no", order.OrderNo, "channel", channelCode,
		"provider_trade_no", notify.ProviderTradeNo)

	return s.fulfill(ctx, order)
}

// fulfill 发货：卡密商品分配卡密，会员商品顺延会员时长
func (s *PaymentService) fulfill(ctx context.Context, order *model.Order) error {
	product, err := s.productRepo.GetProductByID(ctx, order.ProductID)
	if err != nil {
		return err
	}

	switch product.Type {
	case model.ProductTypeCardKey:
		return s.fulfillCardKey(ctx, order, product)
	case model.ProductTypeMembership:
		return s.fulfillMembership(ctx, order, product)
	default:
		return fmt.Errorf("未知商品类型: %s", product.Type)
	}
}

// fulfillCardKey 为订单分配卡密并邮件通知买家
func (s *PaymentService) fulfillCardKey(ctx context.Context, order *model.Order, product *model.Product) error {
	key, err := s.keyRepo.ClaimKey(ctx, product.ID, order.ID, order.UserID)
	if errors.Is(err, repository.ErrNoAvailableKey) {
		// 卡密池卖空了，订单保持已支付等人工补发
		s.logger.Warn("卡密池已空，订单待人工补发", "order_no", order.OrderNo, "product_id", product.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.orderRepo.SetProductKey(ctx, order.OrderNo, key.Secret); err != nil {
		return err
	}
	if err := s.orderRepo.UpdateStatus(ctx, order.OrderNo, model.OrderStatusCompleted); err != nil {
		return err
	}

	// 卡密邮件走异步队列，失败重试3次
	user, err := s.userSvc.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.Error("查询买家信息失败，跳过卡密邮件", "order_no", order.OrderNo, "error", err)
		return nil
	}
	to, name := user.Email, user.Username
	orderNo, productName, secret := order.OrderNo, product.Name, key.Secret
	s.worker.AddRetryTask("key_email:"+orderNo, 3, func(ctx context.Context) error {
		return s.emailSvc.SendProductKeyEmail(to, name, productName, orderNo, secret)
	})

	s.logger.Info("卡密发货完成", "order_no", order.OrderNo, "key_id", key.ID)
	return nil
}

// fulfillMembership 开通或顺延会员
// 现有会员未到期时在原到期时间上顺延，已到期或无会员时从现在起算
func (s *PaymentService) fulfillMembership(ctx context.Context, order *model.Order, product *model.Product) error {
	now := time.Now()
	duration := time.Duration(product.DurationDays) * 24 * time.Hour

	current, err := s.membershipRepo.GetByUserID(ctx, order.UserID)
	if err != nil {
		return err
	}

	if current == nil {
		m := &model.UserMembership{
			UserID:    order.UserID,
			Type:      product.Name,
			StartDate: now,
			EndDate:   now.Add(duration),
			IsActive:  true,
		}
		if err := s.membershipRepo.Create(ctx, m); err != nil {
			return err
		}
	} else {
		base := now
		if current.IsActive && current.EndDate.After(now) {
			base = current.EndDate
		}
		if err := s.membershipRepo.UpdatePeriod(ctx, order.UserID, product.Name, base.Add(duration), true); err != nil {
			return err
		}
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.OrderNo, model.OrderStatusCompleted); err != nil {
		return err
	}

	s.logger.Info("会员发货完成", "order_no", order.OrderNo,
		"user_id", order.UserID, "duration_days", product.DurationDays)
	return nil
}

// onTestPaid 测试支付翻单回调，构造归一化通知走统一结算路径
func (s *PaymentService) onTestPaid(orderNo string) {
	ctx := context.Background()
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil || order == nil {
		s.logger.Error("测试支付回调找不到订单", "order_no", orderNo, "error", err)
		return
	}
	notify := &payment.NotifyResult{
		OrderNo:         orderNo,
		ProviderTradeNo: "TEST" + orderNo,
		Amount:          order.Amount,
		Succeeded:       true,
	}
	if err := s.settle(ctx, payment.CodeTest, notify); err != nil {
		s.logger.Error("测试支付结算失败", "order_no", orderNo, "error", err)
	}
}

// CancelOrder 取消待支付订单
func (s *PaymentService) CancelOrder(ctx context.Context, orderNo string) error {
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New(constants.ErrOrderNotFound)
	}
	if order.Status != model.OrderStatusPending {
		return errors.New(constants.ErrOrderStatusInvalid)
	}
	return s.orderRepo.UpdateStatus(ctx, orderNo, model.OrderStatusCancelled)
}

// CompleteOrder 手动完成已支付订单（管理后台）
// 用于卡密售罄等需要人工补发的场景
func (s *PaymentService) CompleteOrder(ctx context.Context, orderNo string) error {
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New(constants.ErrOrderNotFound)
	}
	if order.Status != model.OrderStatusPaid {
		return errors.New(constants.ErrOrderStatusInvalid)
	}
	return s.orderRepo.UpdateStatus(ctx, orderNo, model.OrderStatusCompleted)
}

// RefundOrder 将订单标记为已退款（管理后台）
// 实际退款在渠道商户后台操作，这里只做状态流转和卡密回收
func (s *PaymentService) RefundOrder(ctx context.Context, orderNo string) error {
	order, err := s.orderRepo.GetOrderByOrderNo(ctx, orderNo)
	if err != nil {
		return err
	}
	if order == nil {
		return errors.New(constants.ErrOrderNotFound)
	}
	if order.Status != model.OrderStatusPaid && order.Status != model.OrderStatusCompleted {
		return errors.New(constants.ErrOrderStatusInvalid)
	}

	// 已发出去的卡密标记为过期，不再回流卡密池
	key, err := s.keyRepo.GetByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	if key != nil {
		if err := s.keyRepo.UpdateStatus(ctx, key.ID, model.KeyStatusExpired); err != nil {
			return err
		}
	}

	return s.orderRepo.UpdateStatus(ctx, orderNo, model.OrderStatusRefunded)
}

// ListChannels 获取所有渠道的展示信息，静态定义与数据库配置合并
func (s *PaymentService) ListChannels(ctx context.Context) ([]ChannelView, error) {
	rows, err := s.channelRepo.GetChannels(ctx)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*model.PaymentChannel, len(rows))
	for i := range rows {
		byCode[rows[i].Code] = &rows[i]
	}

	views := make([]ChannelView, 0, len(payment.ChannelDefs))
	for _, def := range payment.ChannelDefs {
		if def.Code == payment.CodeTest && !s.cfg.Payment.TestPayEnabled {
			continue
		}
		view := ChannelView{
			Code:           def.Code,
			Name:           def.Name,
			RequiredFields: def.RequiredFields,
		}
		if row, ok := byCode[def.Code]; ok {
			view.Enabled = row.Enabled
			view.Configured = row.Config != "" && row.Config != "{}"
			if row.Name != "" {
				view.Name = row.Name
			}
		} else {
			// 没有数据库记录时按环境变量凭据判断
			view.Enabled = s.channelUsable(ctx, def.Code) == nil
			view.Configured = view.Enabled
		}
		views = append(views, view)
	}
	return views, nil
}

// EnabledChannels 获取收银台可选的渠道列表
func (s *PaymentService) EnabledChannels(ctx context.Context) ([]ChannelView, error) {
	all, err := s.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	enabled := make([]ChannelView, 0, len(all))
	for _, ch := range all {
		if ch.Enabled {
			// 商户凭据不下发
			ch.RequiredFields = nil
			enabled = append(enabled, ch)
		}
	}
	return enabled, nil
}

// UpdateChannel 更新渠道配置（管理后台）
func (s *PaymentService) UpdateChannel(ctx context.Context, code string, enabled bool, configMap map[string]string) error {
	def := payment.GetChannelDef(code)
	if def == nil {
		return errors.New(constants.ErrChannelNotFound)
	}

	configJSON := "{}"
	if len(configMap) > 0 {
		raw, err := json.Marshal(configMap)
		if err != nil {
			return err
		}
		configJSON = string(raw)
	}

	// 启用前校验必填配置齐全（数据库配置+环境变量回退）
	if enabled && code != payment.CodeTest {
		env := s.envConfig(code)
		for _, field := range def.RequiredFields {
			if configMap[field] == "" && env[field] == "" {
				return errors.New(constants.ErrChannelConfig)
			}
		}
	}

	return s.channelRepo.UpsertChannel(ctx, &model.PaymentChannel{
		Code:    code,
		Name:    def.Name,
		Enabled: enabled,
		Config:  configJSON,
	})
}

// SetChannelEnabled 仅切换渠道开关
func (s *PaymentService) SetChannelEnabled(ctx context.Context, code string, enabled bool) error {
	if payment.GetChannelDef(code) == nil {
		return errors.New(constants.ErrChannelNotFound)
	}
	channel, err := s.channelRepo.GetChannelByCode(ctx, code)
	if err != nil {
		return err
	}
	if channel == nil {
		return s.UpdateChannel(ctx, code, enabled, nil)
	}
	return s.channelRepo.SetChannelEnabled(ctx, code, enabled)
}

// TestPayStatus 查询测试支付模拟器内的订单状态
func (s *PaymentService) TestPayStatus(orderNo string) (string, bool) {
	if s.testGateway == nil {
		return "", false
	}
	return s.testGateway.Status(orderNo)
}
