package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config 应用程序配置
type Config struct {
	APIPort  int
	SiteURL  string // 站点对外地址，用于拼接支付回调URL
	LogLevel string
	LogFile  LogFileConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Email    EmailConfig
	Geetest  GeetestConfig
	Admin    AdminConfig
	Order    OrderConfig
	Payment  PaymentConfig
}

// DatabaseConfig MySQL数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Enabled    bool   // 是否写入文件
	Path       string // 日志文件路径
	MaxSize    int    // 单个文件最大大小，单位MB
	MaxBackups int    // 最大保留旧文件数量
	MaxAge     int    // 最大保留天数
	Compress   bool   // 是否压缩
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Host     string // SMTP服务器地址
	Port     int    // SMTP服务器端口
	Username string // 邮箱账号
	Password string // 邮箱密码
	From     string // 发件人
	FromName string // 发件人名称
}

// GeetestConfig 极验验证配置
type GeetestConfig struct {
	CaptchaID  string // 验证ID
	CaptchaKey string // 验证密钥
	APIServer  string // API服务器地址
}

// AdminConfig 默认管理员配置，首次启动时不存在则自动创建
type AdminConfig struct {
	Username string
	Password string
	Email    string
}

// OrderConfig 订单配置
type OrderConfig struct {
	ExpireMinutes int // 待支付订单超时自动取消时间（分钟）
}

// PaymentConfig 支付配置
// 渠道凭据优先读取数据库payment_channels里的配置，
// 数据库未配置时回退到这里的环境变量
type PaymentConfig struct {
	TestPayEnabled bool // 是否启用本地测试支付
	TestPayDelay   int  // 测试支付自动完成延迟（秒）
	Wechat         WechatPayConfig
	Alipay         AlipayConfig
	Epay           EpayConfig
	Xunhupay       XunhupayConfig
}

// WechatPayConfig 微信支付配置
type WechatPayConfig struct {
	AppID  string // 应用ID
	MchID  string // 商户号
	APIKey string // API密钥（V2签名）
}

// AlipayConfig 支付宝配置
type AlipayConfig struct {
	AppID      string // 应用ID
	PrivateKey string // 商户RSA私钥（PKCS1 PEM）
	PublicKey  string // 支付宝RSA公钥（PEM）
}

// EpayConfig 易支付配置
type EpayConfig struct {
	APIURL string // 易支付网关地址
	PID    string // 商户ID
	Key    string // 商户密钥
}

// XunhupayConfig 迅虎支付配置
type XunhupayConfig struct {
	APIURL    string // 迅虎支付网关地址
	AppID     string // 商户AppID
	AppSecret string // 商户密钥
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 加载.env文件
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	return &Config{
		APIPort:  getEnvInt("API_PORT", 8080),
		SiteURL:  os.Getenv("SITE_URL"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		LogFile: LogFileConfig{
			Enabled:    os.Getenv("LOG_FILE_ENABLED") == "true",
			Path:       os.Getenv("LOG_FILE_PATH"),
			MaxSize:    getEnvInt("LOG_FILE_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 7),
			MaxAge:     getEnvInt("LOG_FILE_MAX_AGE", 30),
			Compress:   os.Getenv("LOG_FILE_COMPRESS") == "true",
		},
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnvInt("DB_PORT", 3306),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Email: EmailConfig{
			Host:     os.Getenv("EMAIL_HOST"),
			Port:     getEnvInt("EMAIL_PORT", 587),
			Username: os.Getenv("EMAIL_USERNAME"),
			Password: os.Getenv("EMAIL_PASSWORD"),
			From:     os.Getenv("EMAIL_FROM"),
			FromName: os.Getenv("EMAIL_FROM_NAME"),
		},
		Geetest: GeetestConfig{
			CaptchaID:  os.Getenv("GEETEST_CAPTCHA_ID"),
			CaptchaKey: os.Getenv("GEETEST_CAPTCHA_KEY"),
			APIServer:  os.Getenv("GEETEST_API_SERVER"),
		},
		Admin: AdminConfig{
			Username: getEnvDefault("ADMIN_USERNAME", "admin"),
			Password: os.Getenv("ADMIN_PASSWORD"),
			Email:    getEnvDefault("ADMIN_EMAIL", "admin@localhost"),
		},
		Order: OrderConfig{
			ExpireMinutes: getEnvInt("ORDER_EXPIRE_MINUTES", 30),
		},
		Payment: PaymentConfig{
			TestPayEnabled: os.Getenv("TEST_PAY_ENABLED") == "true",
			TestPayDelay:   getEnvInt("TEST_PAY_DELAY", 5),
			Wechat: WechatPayConfig{
				AppID:  os.Getenv("WECHAT_APP_ID"),
				MchID:  os.Getenv("WECHAT_MCH_ID"),
				APIKey: os.Getenv("WECHAT_API_KEY"),
			},
			Alipay: AlipayConfig{
				AppID:      os.Getenv("ALIPAY_APP_ID"),
				PrivateKey: os.Getenv("ALIPAY_PRIVATE_KEY"),
				PublicKey:  os.Getenv("ALIPAY_PUBLIC_KEY"),
			},
			Epay: EpayConfig{
				APIURL: os.Getenv("EPAY_API_URL"),
				PID:    os.Getenv("EPAY_PID"),
				Key:    os.Getenv("EPAY_KEY"),
			},
			Xunhupay: XunhupayConfig{
				APIURL:    getEnvDefault("XUNHUPAY_API_URL", "https://api.xunhupay.com"),
				AppID:     os.Getenv("XUNHUPAY_APP_ID"),
				AppSecret: os.Getenv("XUNHUPAY_APP_SECRET"),
			},
		},
	}, nil
}

// getEnvInt 读取整型环境变量，解析失败时返回默认值
func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvDefault 读取字符串环境变量，为空时返回默认值
func getEnvDefault(key, defaultValue string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v
}
