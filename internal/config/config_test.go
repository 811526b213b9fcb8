package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// 保存原始环境变量
	originalEnvs := make(map[string]string)
	envKeys := []string{
		"ERPMAIL_SERVER_HOST",
		"ERPMAIL_SERVER_PORT",
		"ERPMAIL_RELAY_HOST",
		"ERPMAIL_RELAY_PORT",
		"ERPMAIL_RELAY_STARTTLS",
		"ERPMAIL_RELAY_TIMEOUT",
		"ERPMAIL_RELAY_MAX_PER_SECOND",
		"ERPMAIL_MAIL_SENT_MAILBOX",
		"ERPMAIL_MAIL_LANGUAGE",
		"ERPMAIL_CORS_ALLOWED_ORIGINS",
		"ERPMAIL_LOG_LEVEL",
		"ERPMAIL_LOG_DEVELOPMENT",
		"ERPMAIL_DATABASE_TYPE",
		"ERPMAIL_DATABASE_DSN",
	}

	for _, key := range envKeys {
		originalEnvs[key] = os.Getenv(key)
	}

	// 测试后恢复环境变量
	defer func() {
		for key, value := range originalEnvs {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	clearEnv := func() {
		for _, key := range envKeys {
			os.Unsetenv(key)
		}
	}

	t.Run("加载默认配置成功", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证默认值
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "", cfg.Relay.Host)
		assert.Equal(t, 25, cfg.Relay.Port)
		assert.Equal(t, 30*time.Second, cfg.Relay.Timeout)
		assert.Equal(t, float64(0), cfg.Relay.MaxPerSecond)
		assert.Equal(t, 1, cfg.Relay.Burst)
		assert.Equal(t, "Sent", cfg.Mail.SentMailbox)
		assert.Equal(t, "Outbox", cfg.Mail.OutboxMailbox)
		assert.Equal(t, "Drafts", cfg.Mail.DraftMailbox)
		assert.Equal(t, "en", cfg.Mail.Language)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "", cfg.Database.Type)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		clearEnv()
		os.Setenv("ERPMAIL_SERVER_HOST", "127.0.0.1")
		os.Setenv("ERPMAIL_SERVER_PORT", "9090")
		os.Setenv("ERPMAIL_RELAY_HOST", "smtp.example.com")
		os.Setenv("ERPMAIL_RELAY_PORT", "587")
		os.Setenv("ERPMAIL_RELAY_STARTTLS", "true")
		os.Setenv("ERPMAIL_RELAY_TIMEOUT", "10s")
		os.Setenv("ERPMAIL_RELAY_MAX_PER_SECOND", "2.5")
		os.Setenv("ERPMAIL_MAIL_SENT_MAILBOX", "Archive")
		os.Setenv("ERPMAIL_MAIL_LANGUAGE", "de")
		os.Setenv("ERPMAIL_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
		os.Setenv("ERPMAIL_LOG_LEVEL", "debug")
		os.Setenv("ERPMAIL_LOG_DEVELOPMENT", "true")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证自定义值
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "smtp.example.com", cfg.Relay.Host)
		assert.Equal(t, 587, cfg.Relay.Port)
		assert.True(t, cfg.Relay.StartTLS)
		assert.Equal(t, 10*time.Second, cfg.Relay.Timeout)
		assert.Equal(t, 2.5, cfg.Relay.MaxPerSecond)
		assert.Equal(t, "Archive", cfg.Mail.SentMailbox)
		assert.Equal(t, "de", cfg.Mail.Language)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Development)
	})

	t.Run("非法中继超时报错", func(t *testing.T) {
		clearEnv()
		os.Setenv("ERPMAIL_RELAY_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("数据库类型不支持报错", func(t *testing.T) {
		clearEnv()
		os.Setenv("ERPMAIL_DATABASE_TYPE", "oracle")
		os.Setenv("ERPMAIL_DATABASE_DSN", "whatever")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("指定数据库类型但缺少DSN报错", func(t *testing.T) {
		clearEnv()
		os.Setenv("ERPMAIL_DATABASE_TYPE", "postgres")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseList(" a , b ,"))
	assert.Empty(t, parseList("  ,  "))
}
