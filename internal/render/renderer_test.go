package render

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/engine"
	"erpmail/backend/internal/report"
)

func testTemplate() *domain.Template {
	return &domain.Template{
		Name:    "order confirmation",
		Model:   "sale.order",
		Engine:  domain.EngineJinja,
		From:    `sales@example.com`,
		To:      `{{ record.email }}`,
		Subject: `Order {{ record.reference }}`,
		Plain:   `Dear {{ record.partner }}, your order {{ record.reference }} is confirmed.`,
		HTML:    `<p>Dear {{ record.partner }}, your order <b>{{ record.reference }}</b> is confirmed.</p>`,
	}
}

func testRecord() *domain.Record {
	return &domain.Record{
		Model: "sale.order",
		ID:    "42",
		Fields: map[string]any{
			"reference": "SO-42",
			"partner":   "Acme Corp",
			"email":     "buyer@acme.example",
			"lang":      "es",
		},
		Translations: map[string]map[string]any{
			"es": {"partner": "Acme SA"},
		},
	}
}

func TestRender_Headers(t *testing.T) {
	r := NewRenderer(nil, nil, nil)
	tpl := testTemplate()

	msg, err := r.Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)

	assert.Equal(t, "sales@example.com", msg.Header("From"))
	assert.Equal(t, "buyer@acme.example", msg.Header("To"))
	assert.Equal(t, "Order SO-42", msg.Header("Subject"))

	// empty expressions never produce a header
	_, hasCc := msg.Headers["Cc"]
	assert.False(t, hasCc)
	_, hasReply := msg.Headers["In-Reply-To"]
	assert.False(t, hasReply)
}

func TestRender_BccNeverEvaluatedIntoHeaders(t *testing.T) {
	tpl := testTemplate()
	tpl.Bcc = `audit@example.com`

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)

	_, ok := msg.Headers["Bcc"]
	assert.False(t, ok)
}

func TestRender_BothBodiesPresent(t *testing.T) {
	tpl := testTemplate()
	tpl.HTML = "" // html side empty

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)

	assert.NotEmpty(t, msg.Plain)
	assert.Empty(t, msg.HTML)

	// the MIME stream still carries both alternative parts
	raw, err := BuildMIME(msg)
	require.NoError(t, err)
	parsed := parseMIME(t, raw)
	assert.Contains(t, parsed.contentTypes, "text/plain; charset=utf-8")
	assert.Contains(t, parsed.contentTypes, "text/html; charset=utf-8")
}

func TestRender_Idempotent(t *testing.T) {
	r := NewRenderer(nil, nil, nil)
	tpl := testTemplate()
	record := testRecord()

	first, err := r.Render(context.Background(), domain.RenderContext{}, tpl, record)
	require.NoError(t, err)
	second, err := r.Render(context.Background(), domain.RenderContext{}, tpl, record)
	require.NoError(t, err)

	// header values are identical across renders; Date is excluded by contract
	assert.Equal(t, first.Headers, second.Headers)
	assert.Equal(t, first.Plain, second.Plain)
	assert.Equal(t, first.HTML, second.HTML)
}

func TestRender_LanguageExpression(t *testing.T) {
	tpl := testTemplate()
	tpl.Language = `{{ record.lang }}`

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{Language: "en"}, tpl, testRecord())
	require.NoError(t, err)

	// subject and bodies resolve translated fields in the evaluated language
	assert.Contains(t, msg.Plain, "Acme SA")
	assert.Contains(t, msg.HTML, "Acme SA")
}

func TestRender_CreateMessageID(t *testing.T) {
	tpl := testTemplate()
	tpl.CreateMessageID = true

	r := NewRenderer(nil, nil, nil)
	msg, err := r.Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Header("Message-Id"))

	// an explicit expression wins over generation
	tpl.MessageID = `<fixed@example.com>`
	msg, err = r.Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)
	assert.Equal(t, "<fixed@example.com>", msg.Header("Message-Id"))
}

func TestRender_Signature(t *testing.T) {
	tpl := testTemplate()
	tpl.Signature = true
	user := &domain.Sender{Name: "Jane", Signature: "Regards,\nJane"}

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{User: user}, tpl, testRecord())
	require.NoError(t, err)

	assert.True(t, len(msg.Plain) > 0)
	assert.Contains(t, msg.Plain, "\n--\nRegards,\nJane")
	// without an HTML signature the plain one is converted
	assert.Contains(t, msg.HTML, "<br>--<br>Regards,<br>Jane")
}

func TestRender_SignatureHTMLPreferred(t *testing.T) {
	tpl := testTemplate()
	tpl.Signature = true
	user := &domain.Sender{
		Signature:     "Regards,\nJane",
		SignatureHTML: "<i>Regards, Jane</i>",
	}

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{User: user}, tpl, testRecord())
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "<br>--<br><i>Regards, Jane</i>")
	assert.NotContains(t, msg.HTML, "Regards,<br>Jane")
}

func TestRender_SignatureFlagOff(t *testing.T) {
	tpl := testTemplate()
	user := &domain.Sender{Signature: "Regards,\nJane"}

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{User: user}, tpl, testRecord())
	require.NoError(t, err)
	assert.NotContains(t, msg.Plain, "Regards")
}

func TestRender_StyleWrap(t *testing.T) {
	tpl := testTemplate()
	tpl.CustomStyle = "body { color: red; }"

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)

	assert.Contains(t, msg.HTML, "<style type=\"text/css\">body { color: red; }</style>")
	assert.Contains(t, msg.HTML, "<body><p>Dear")
}

func TestRender_NamedStyle(t *testing.T) {
	tpl := testTemplate()
	tpl.Style = "plain"

	msg, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "font-family: sans-serif")
}

func TestRender_Reports(t *testing.T) {
	registry := report.NewRegistry(engine.Evaluate)
	registry.Register(report.Definition{
		ID:        "invoice",
		Name:      "invoice",
		Extension: "html",
		Engine:    domain.EngineJinja,
		Body:      `<h1>Invoice for {{ record.reference }}</h1>`,
	})

	tpl := testTemplate()
	tpl.Reports = []domain.ReportLink{
		{ReportID: "invoice", Filename: `invoice_{{ record.reference }}`},
	}

	msg, err := NewRenderer(nil, registry, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	require.NoError(t, err)

	require.Len(t, msg.Attachments, 1)
	att := msg.Attachments[0]
	assert.Equal(t, "invoice_SO-42.html", att.Filename)
	assert.Contains(t, att.ContentType, "text/html")
	assert.Equal(t, "<h1>Invoice for SO-42</h1>", string(att.Data))
}

func TestRender_ReportsWithoutEngine(t *testing.T) {
	tpl := testTemplate()
	tpl.Reports = []domain.ReportLink{{ReportID: "invoice"}}

	_, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRender_EvaluationErrorPropagates(t *testing.T) {
	tpl := testTemplate()
	tpl.Subject = `{% broken %}`

	_, err := NewRenderer(nil, nil, nil).Render(context.Background(), domain.RenderContext{}, tpl, testRecord())
	var evalErr *domain.EvaluationError
	require.True(t, errors.As(err, &evalErr))
}

// freshSource always returns a fixed template, regardless of what was passed in.
type freshSource struct {
	tpl *domain.Template
}

func (s *freshSource) GetTemplate(id string) (*domain.Template, error) {
	if s.tpl == nil {
		return nil, errors.New("template not found")
	}
	return s.tpl, nil
}

func TestRender_RereadsTemplate(t *testing.T) {
	stored := testTemplate()
	stored.ID = "tpl-1"
	stored.Subject = `fresh subject`

	stale := testTemplate()
	stale.ID = "tpl-1"
	stale.Subject = `stale subject`

	msg, err := NewRenderer(&freshSource{tpl: stored}, nil, nil).Render(context.Background(), domain.RenderContext{}, stale, testRecord())
	require.NoError(t, err)
	assert.Equal(t, "fresh subject", msg.Header("Subject"))
}

func TestAttachmentFilename(t *testing.T) {
	assert.Equal(t, "invoice_42.pdf", AttachmentFilename("invoice_42", "pdf"))
	assert.Equal(t, "invoice_42", AttachmentFilename("invoice_42", ""))
}
