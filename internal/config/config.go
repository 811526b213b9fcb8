package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"erpmail/backend/internal/logger"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// RelayConfig 定义出站 SMTP 中继配置
type RelayConfig struct {
	Host         string        // 中继主机，留空表示不配置中继（纯排队/草稿部署）
	Port         int           // 中继端口，默认 25
	Username     string        // 认证用户名，留空表示匿名投递
	Password     string        // 认证密码
	StartTLS     bool          // 是否使用 STARTTLS
	Timeout      time.Duration // 单次会话超时，默认 30s
	MaxPerSecond float64       // 出站限速（封/秒），0 表示不限速
	Burst        int           // 限速突发额度，默认 1
}

// MailConfig 定义邮件模块的业务默认值
type MailConfig struct {
	SentMailbox   string        // 已发送邮箱名，启动时自动创建，默认 "Sent"
	OutboxMailbox string        // 发件队列邮箱名，默认 "Outbox"
	DraftMailbox  string        // 草稿箱名，默认 "Drafts"
	Language      string        // 渲染默认语言，默认 "en"
	FlushInterval time.Duration // 发件队列清空间隔，默认 1 分钟
	FlushWorkers  int           // 队列投递并发数，默认 4
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// DatabaseConfig 定义数据库连接配置（支持 MySQL 和 PostgreSQL）
type DatabaseConfig struct {
	Type            string        // 数据库类型: "mysql" 或 "postgres"，留空使用内存存储
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server   ServerConfig   // HTTP 服务器配置
	Relay    RelayConfig    // 出站中继配置
	Mail     MailConfig     // 邮件业务默认值
	CORS     CORSConfig     // 跨域配置
	Log      logger.Config  // 日志配置
	Database DatabaseConfig // 数据库配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: ERPMAIL_
// 例如: ERPMAIL_SERVER_PORT, ERPMAIL_RELAY_HOST
func Load() (*Config, error) {
	// .env 文件是可选的，加载失败静默忽略
	loadEnvFile()

	viper.SetEnvPrefix("erpmail")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("relay.host", "")
	viper.SetDefault("relay.port", 25)
	viper.SetDefault("relay.username", "")
	viper.SetDefault("relay.password", "")
	viper.SetDefault("relay.starttls", false)
	viper.SetDefault("relay.timeout", "30s")
	viper.SetDefault("relay.max_per_second", 0)
	viper.SetDefault("relay.burst", 1)
	viper.SetDefault("mail.sent_mailbox", "Sent")
	viper.SetDefault("mail.outbox_mailbox", "Outbox")
	viper.SetDefault("mail.draft_mailbox", "Drafts")
	viper.SetDefault("mail.language", "en")
	viper.SetDefault("mail.flush_interval", "1m")
	viper.SetDefault("mail.flush_workers", 4)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.log_file", "")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 3)
	viper.SetDefault("log.max_age", 28)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.type", "") // 默认为空，使用内存存储
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	relayTimeout, err := time.ParseDuration(viper.GetString("relay.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid relay.timeout: %w", err)
	}

	maxPerSecond := viper.GetFloat64("relay.max_per_second")
	if maxPerSecond < 0 {
		return nil, fmt.Errorf("relay.max_per_second must not be negative")
	}
	burst := viper.GetInt("relay.burst")
	if burst <= 0 {
		burst = 1
	}

	dbType := viper.GetString("database.type")
	switch dbType {
	case "", "mysql", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database.type: %q", dbType)
	}
	if dbType != "" && viper.GetString("database.dsn") == "" {
		return nil, fmt.Errorf("database.dsn is required when database.type is set")
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	flushInterval, err := time.ParseDuration(viper.GetString("mail.flush_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid mail.flush_interval: %w", err)
	}
	flushWorkers := viper.GetInt("mail.flush_workers")
	if flushWorkers <= 0 {
		flushWorkers = 4
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Relay: RelayConfig{
			Host:         viper.GetString("relay.host"),
			Port:         viper.GetInt("relay.port"),
			Username:     viper.GetString("relay.username"),
			Password:     viper.GetString("relay.password"),
			StartTLS:     viper.GetBool("relay.starttls"),
			Timeout:      relayTimeout,
			MaxPerSecond: maxPerSecond,
			Burst:        burst,
		},
		Mail: MailConfig{
			SentMailbox:   viper.GetString("mail.sent_mailbox"),
			OutboxMailbox: viper.GetString("mail.outbox_mailbox"),
			DraftMailbox:  viper.GetString("mail.draft_mailbox"),
			Language:      viper.GetString("mail.language"),
			FlushInterval: flushInterval,
			FlushWorkers:  flushWorkers,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: logger.Config{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			LogFile:     viper.GetString("log.log_file"),
			MaxSize:     viper.GetInt("log.max_size"),
			MaxBackups:  viper.GetInt("log.max_backups"),
			MaxAge:      viper.GetInt("log.max_age"),
			Compress:    viper.GetBool("log.compress"),
		},
		Database: DatabaseConfig{
			Type:            dbType,
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载当前目录或父目录的 .env 文件。
// 已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
