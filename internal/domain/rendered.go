package domain

import (
	"time"
)

// RenderedAttachment 表示渲染产出的一个附件。
type RenderedAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

// RenderedMessage 是渲染器的产物：一封完整组装好的邮件，
// 在交给投递器之前不做任何持久化。
type RenderedMessage struct {
	Headers     map[string]string    // 头部键使用规范形式，如 "Message-Id"
	Plain       string               // 纯文本正文
	HTML        string               // HTML 正文
	Attachments []RenderedAttachment // 附件按模板里报表的顺序排列
	Date        time.Time            // Date 头部时间戳
}

// Header 读取头部，未设置时返回空串。
func (m *RenderedMessage) Header(key string) string {
	return m.Headers[key]
}

// SetHeader 设置头部；空值不会生成头部。
func (m *RenderedMessage) SetHeader(key, value string) {
	if value == "" {
		return
	}
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[key] = value
}
