// Package security 提供出站附件的安全策略检查。
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AttachmentPolicy 出站附件策略。
//
// 报表生成的附件在进入 MIME 构建前先过一遍策略，
// 避免模板配置错误把可执行文件发给客户。
type AttachmentPolicy struct {
	maxSize             int64
	dangerousExtensions map[string]bool
}

// NewAttachmentPolicy 创建默认策略。
func NewAttachmentPolicy() *AttachmentPolicy {
	return &AttachmentPolicy{
		maxSize: 10 * 1024 * 1024, // 10MB
		dangerousExtensions: map[string]bool{
			".exe": true,
			".bat": true,
			".cmd": true,
			".scr": true,
			".pif": true,
			".com": true,
			".vbs": true,
			".js":  true,
			".jar": true,
		},
	}
}

// SetMaxSize 调整单个附件的大小上限。
func (p *AttachmentPolicy) SetMaxSize(bytes int64) {
	p.maxSize = bytes
}

// Check 校验一个待发送附件，违反策略时返回错误。
func (p *AttachmentPolicy) Check(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if p.dangerousExtensions[ext] {
		return fmt.Errorf("attachment %q has a blocked extension %s", filename, ext)
	}
	if p.maxSize > 0 && size > p.maxSize {
		return fmt.Errorf("attachment %q exceeds size limit (%d > %d bytes)", filename, size, p.maxSize)
	}
	return nil
}
