package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"erpmail/backend/internal/domain"
)

// 信头的书写顺序；不在表里的头部按字典序排在后面
var headerOrder = []string{
	"From", "Sender", "Reply-To", "To", "Cc",
	"Subject", "Message-Id", "In-Reply-To",
}

// BuildMIME 把渲染产物序列化为 RFC 5322 字节流：
// 顶层 multipart/mixed，内含 multipart/alternative（纯文本 + HTML）
// 与 base64 编码的附件部分。
//
// Bcc 永远不会出现在输出头部里，信封收件人由投递器带外提供。
func BuildMIME(msg *domain.RenderedMessage) ([]byte, error) {
	var buf bytes.Buffer

	date := msg.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))

	written := map[string]bool{"Date": true, "Bcc": true}
	for _, key := range headerOrder {
		if value := msg.Headers[key]; value != "" {
			writeHeader(&buf, key, value)
			written[key] = true
		}
	}

	rest := make([]string, 0, len(msg.Headers))
	for key, value := range msg.Headers {
		if !written[key] && value != "" {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		writeHeader(&buf, key, msg.Headers[key])
	}

	buf.WriteString("MIME-Version: 1.0\r\n")

	mixed := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mixed.Boundary())

	if err := writeAlternative(mixed, msg); err != nil {
		return nil, err
	}

	for _, att := range msg.Attachments {
		if err := writeAttachment(mixed, att); err != nil {
			return nil, err
		}
	}

	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAlternative 写入纯文本 + HTML 的 multipart/alternative 部分。
// 两个正文部分总是存在，即便其中一个为空串。
func writeAlternative(mixed *multipart.Writer, msg *domain.RenderedMessage) error {
	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)

	if err := writeTextPart(alt, "text/plain; charset=utf-8", msg.Plain); err != nil {
		return err
	}
	if err := writeTextPart(alt, "text/html; charset=utf-8", msg.HTML); err != nil {
		return err
	}
	if err := alt.Close(); err != nil {
		return err
	}

	part, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return err
	}
	_, err = part.Write(altBody.Bytes())
	return err
}

// writeTextPart 以 quoted-printable 编码写入一个文本部分。
func writeTextPart(w *multipart.Writer, contentType, body string) error {
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	qp := quotedprintable.NewWriter(part)
	if _, err := qp.Write([]byte(body)); err != nil {
		return err
	}
	return qp.Close()
}

// writeAttachment 以 base64 编码写入一个附件部分。
func writeAttachment(w *multipart.Writer, att domain.RenderedAttachment) error {
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {att.ContentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {disposition},
	})
	if err != nil {
		return err
	}
	return writeBase64(part, att.Data)
}

// writeBase64 按 76 列折行写入 base64 内容。
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		line := encoded
		if len(line) > 76 {
			line = line[:76]
		}
		encoded = encoded[len(line):]
		if _, err := io.WriteString(w, line+"\r\n"); err != nil {
			return err
		}
	}
	return nil
}

// writeHeader 写入单个头部，非 ASCII 值用 Q 编码。
func writeHeader(buf *bytes.Buffer, key, value string) {
	encoded := value
	if !isASCII(value) {
		encoded = mime.QEncoding.Encode("utf-8", value)
	}
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(encoded)
	buf.WriteString("\r\n")
}

func isASCII(s string) bool {
	return !strings.ContainsFunc(s, func(r rune) bool { return r > 0x7f })
}
