package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Outreach OutreachConfig `mapstructure:"outreach"`
	Import   ImportConfig   `mapstructure:"import"`
	Backup   BackupConfig   `mapstructure:"backup"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port          int        `mapstructure:"port"`
	BaseURL       string     `mapstructure:"base_url"`
	MaxUploadSize int64      `mapstructure:"max_upload_size"` // 上传文件最大字节数（Excel / 传单）
	CORS          CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// DatabaseConfig PostgreSQL 数据库配置
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // 连接最大生命周期（分钟）
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // 空闲连接最大存活时间（分钟）
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置（导入互斥锁、Token 黑名单、限流）
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig JWT 认证配置
type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutreachConfig 外联业务阈值与规则
//
// 所有阈值以天为单位，默认值集中在 Load 中声明。
type OutreachConfig struct {
	LunchFollowupDays   int      `mapstructure:"lunch_followup_days"`   // 超过该天数未联系 → Follow-up Overdue（默认 90）
	CookieVisitDays     int      `mapstructure:"cookie_visit_days"`     // 下次送饼干的默认间隔（默认 60）
	FlyerSendDays       int      `mapstructure:"flyer_send_days"`       // 超过该天数未发传单 → 待发送（默认 30）
	ThankYouGraceDays   int      `mapstructure:"thank_you_grace_days"`  // 感谢信待寄宽限期（默认 7）
	HighPriorityDays    int      `mapstructure:"high_priority_days"`    // 超过该天数未联系记为 high（默认 120）
	HuntsvilleZips      []string `mapstructure:"huntsville_zips"`       // Huntsville 邮编白名单
	WoodlandsZips       []string `mapstructure:"woodlands_zips"`        // Woodlands 邮编白名单
	FaxEmailDomain      string   `mapstructure:"fax_email_domain"`      // 传真转邮件网关域名
	DefaultTeamMember   string   `mapstructure:"default_team_member"`   // 导入/自动记录时使用的成员名
	FailedCallThreshold int      `mapstructure:"failed_call_threshold"` // 午餐预约电话尝试告警阈值（默认 3）
}

// ImportConfig 表格导入配置
type ImportConfig struct {
	SheetName     string        `mapstructure:"sheet_name"`
	Transactional bool          `mapstructure:"transactional"` // true 时整次导入在单个事务内完成
	LockTTL       time.Duration `mapstructure:"lock_ttl"`
}

// BackupConfig S3 备份配置（bucket 为空时禁用）
type BackupConfig struct {
	Bucket   string `mapstructure:"bucket"`
	Prefix   string `mapstructure:"prefix"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// Enabled 是否启用 S3 存储
func (c *BackupConfig) Enabled() bool { return c.Bucket != "" }

// OutboxConfig 传真发件队列配置（SQS，queue_name 为空时禁用）
type OutboxConfig struct {
	QueueName   string `mapstructure:"queue_name"`
	SenderEmail string `mapstructure:"sender_email"`
}

// Enabled 是否启用发件队列
func (c *OutboxConfig) Enabled() bool { return c.QueueName != "" }

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在时仅依赖默认值和环境变量
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default 返回仅包含默认值的配置（测试与 CLI 子命令使用）
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.max_upload_size", 20<<20)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "referral_outreach")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Chicago")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "12h")
	v.SetDefault("auth.refresh_token_ttl", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("outreach.lunch_followup_days", 90)
	v.SetDefault("outreach.cookie_visit_days", 60)
	v.SetDefault("outreach.flyer_send_days", 30)
	v.SetDefault("outreach.thank_you_grace_days", 7)
	v.SetDefault("outreach.high_priority_days", 120)
	v.SetDefault("outreach.huntsville_zips", []string{
		"77320", "77340", "77341", "77342", "77343", "77344", "77348", "77349",
	})
	v.SetDefault("outreach.woodlands_zips", []string{
		"77380", "77381", "77382", "77384", "77385", "77386", "77387", "77389", "77393",
	})
	v.SetDefault("outreach.fax_email_domain", "fax.vonagebusiness.com")
	v.SetDefault("outreach.default_team_member", "Robbie")
	v.SetDefault("outreach.failed_call_threshold", 3)

	v.SetDefault("import.sheet_name", "Full List")
	v.SetDefault("import.transactional", false)
	v.SetDefault("import.lock_ttl", "10m")

	// 以下键无实际默认值，注册后才能被环境变量覆盖
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.prefix", "outreach")
	v.SetDefault("backup.region", "us-east-1")
	v.SetDefault("backup.endpoint", "")

	v.SetDefault("outbox.queue_name", "")
	v.SetDefault("outbox.sender_email", "")
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	return c.Outreach.Validate()
}

// Validate 校验外联阈值
func (c *OutreachConfig) Validate() error {
	if c.LunchFollowupDays <= 0 || c.CookieVisitDays <= 0 || c.FlyerSendDays <= 0 {
		return fmt.Errorf("配置校验失败: outreach 阈值天数必须为正数")
	}
	if c.ThankYouGraceDays < 0 || c.HighPriorityDays <= 0 {
		return fmt.Errorf("配置校验失败: outreach.thank_you_grace_days / high_priority_days 无效")
	}
	if c.FaxEmailDomain == "" {
		return fmt.Errorf("配置校验失败: outreach.fax_email_domain 不能为空")
	}
	return nil
}
