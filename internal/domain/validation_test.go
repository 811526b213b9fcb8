package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddresses(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "semicolon and comma interchangeable",
			input: "a@x.com;b@y.com , c@z.com ",
			want:  []string{"a@x.com", "b@y.com", "c@z.com"},
		},
		{
			name:  "single address",
			input: "a@x.com",
			want:  []string{"a@x.com"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "trailing separators dropped",
			input: "a@x.com;;",
			want:  []string{"a@x.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAddresses(tt.input))
		})
	}
}

func TestValidAddresses(t *testing.T) {
	assert.True(t, ValidAddresses([]string{"a@x.com", "b@y.com"}))
	assert.False(t, ValidAddresses(nil))
	assert.False(t, ValidAddresses([]string{}))
	assert.False(t, ValidAddresses([]string{"a@x.com", "not-an-address"}))
	assert.False(t, ValidAddresses([]string{""}))
}

func TestRecordField(t *testing.T) {
	record := &Record{
		Model: "sale.order",
		ID:    "42",
		Fields: map[string]any{
			"reference": "SO-42",
			"note":      "base note",
		},
		Translations: map[string]map[string]any{
			"es": {"note": "nota base"},
		},
	}

	assert.Equal(t, "SO-42", record.Field("reference", ""))
	assert.Equal(t, "base note", record.Field("note", "en"))
	assert.Equal(t, "nota base", record.Field("note", "es"))
	// translated language falls back to base for untranslated fields
	assert.Equal(t, "SO-42", record.Field("reference", "es"))
	assert.Nil(t, record.Field("missing", "es"))
}

func TestRecordEnv(t *testing.T) {
	record := &Record{
		Fields:       map[string]any{"note": "base"},
		Translations: map[string]map[string]any{"es": {"note": "nota"}},
	}

	env := record.Env("es")
	fields, ok := env["record"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "nota", fields["note"])

	// Env must not mutate the record itself
	assert.Equal(t, "base", record.Fields["note"])
}

func TestMailRecordRecipients(t *testing.T) {
	mail := &MailRecord{
		To:  "a@x.com;b@y.com",
		Cc:  "c@z.com",
		Bcc: "",
	}
	assert.Equal(t, []string{"a@x.com", "b@y.com", "c@z.com"}, mail.Recipients())
}

func TestValidEngine(t *testing.T) {
	assert.True(t, ValidEngine(EngineRaw))
	assert.True(t, ValidEngine(EngineText))
	assert.True(t, ValidEngine(EngineJinja))
	assert.False(t, ValidEngine(Engine("genshi")))
}
