// Package smtp 封装发往邮件中继的出站投递。
package smtp

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
)

// Client 是邮件中继协作方接口：投递器只依赖这两个操作。
type Client interface {
	// Sendmail 把完整的 RFC 5322 字节流投递给信封收件人
	Sendmail(from string, recipients []string, raw []byte) error
	// Noop 探测中继可达性
	Noop() error
	// Quit 结束与中继的会话
	Quit() error
}

// Config 中继连接参数。
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	StartTLS bool
	Timeout  time.Duration
}

// RelayClient 基于 go-smtp 客户端实现 Client，每次投递独立建连，
// 投递完成即断开，不维护长连接。
type RelayClient struct {
	cfg Config
}

// NewRelayClient 创建中继客户端。
func NewRelayClient(cfg Config) *RelayClient {
	if cfg.Port == 0 {
		cfg.Port = 25
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RelayClient{cfg: cfg}
}

// Sendmail 建连、认证并投递一封邮件。
func (c *RelayClient) Sendmail(from string, recipients []string, raw []byte) error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var client *gosmtp.Client
	var err error
	if c.cfg.StartTLS {
		client, err = gosmtp.DialStartTLS(addr, &tls.Config{ServerName: c.cfg.Host})
	} else {
		client, err = gosmtp.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("dial relay %s: %w", addr, err)
	}
	defer client.Close()

	client.CommandTimeout = c.cfg.Timeout
	client.SubmissionTimeout = c.cfg.Timeout

	if c.cfg.Username != "" {
		auth := sasl.NewPlainClient("", c.cfg.Username, c.cfg.Password)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
	}

	if err := client.SendMail(from, recipients, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return client.Quit()
}

// Noop 建连并发送 NOOP，用于就绪探针。
func (c *RelayClient) Noop() error {
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var client *gosmtp.Client
	var err error
	if c.cfg.StartTLS {
		client, err = gosmtp.DialStartTLS(addr, &tls.Config{ServerName: c.cfg.Host})
	} else {
		client, err = gosmtp.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("dial relay %s: %w", addr, err)
	}
	defer client.Close()

	client.CommandTimeout = c.cfg.Timeout
	if err := client.Noop(); err != nil {
		return fmt.Errorf("noop: %w", err)
	}
	return client.Quit()
}

// Quit 对无长连接的实现是空操作，保留以满足协作方契约。
func (c *RelayClient) Quit() error {
	return nil
}
