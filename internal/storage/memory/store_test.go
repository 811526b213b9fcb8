package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpmail/backend/internal/domain"
	"erpmail/backend/internal/storage"
)

func TestMemoryStore_TemplateOperations(t *testing.T) {
	store := NewStore()

	tpl := &domain.Template{
		ID:     "tpl-1",
		Name:   "order confirmation",
		Model:  "sale.order",
		Engine: domain.EngineJinja,
	}
	require.NoError(t, store.SaveTemplate(tpl))

	got, err := store.GetTemplate("tpl-1")
	require.NoError(t, err)
	assert.Equal(t, tpl.Name, got.Name)
	assert.Equal(t, tpl.Engine, got.Engine)

	// returned copy is detached from the stored one
	got.Name = "mutated"
	again, err := store.GetTemplate("tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "order confirmation", again.Name)

	list, err := store.ListTemplates()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, store.DeleteTemplate("tpl-1"))
	_, err = store.GetTemplate("tpl-1")
	assert.ErrorIs(t, err, storage.ErrTemplateNotFound)
}

func TestMemoryStore_MailboxOperations(t *testing.T) {
	store := NewStore()

	mailbox := &domain.Mailbox{ID: "mb-1", Name: "Sent", Role: domain.RoleSent}
	require.NoError(t, store.SaveMailbox(mailbox))

	got, err := store.GetMailboxByName("Sent")
	require.NoError(t, err)
	assert.Equal(t, "mb-1", got.ID)

	// another mailbox with the same name is rejected
	err = store.SaveMailbox(&domain.Mailbox{ID: "mb-2", Name: "Sent", Role: domain.RoleDraft})
	assert.ErrorIs(t, err, storage.ErrMailboxExists)

	// renaming updates the name index
	mailbox.Name = "Sent 2024"
	require.NoError(t, store.SaveMailbox(mailbox))
	_, err = store.GetMailboxByName("Sent")
	assert.ErrorIs(t, err, storage.ErrMailboxNotFound)

	require.NoError(t, store.DeleteMailbox("mb-1"))
	_, err = store.GetMailbox("mb-1")
	assert.ErrorIs(t, err, storage.ErrMailboxNotFound)
}

func TestMemoryStore_MailOperations(t *testing.T) {
	store := NewStore()

	older := &domain.MailRecord{ID: "mail-1", MailboxID: "mb-1", Subject: "first", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.MailRecord{ID: "mail-2", MailboxID: "mb-1", Subject: "second", CreatedAt: time.Now()}
	require.NoError(t, store.SaveMail(older))
	require.NoError(t, store.SaveMail(newer))
	require.NoError(t, store.SaveMail(&domain.MailRecord{ID: "mail-3", MailboxID: "mb-2"}))

	mails, err := store.ListMails("mb-1")
	require.NoError(t, err)
	require.Len(t, mails, 2)
	assert.Equal(t, "mail-2", mails[0].ID) // newest first

	// moving between mailboxes is an overwrite
	older.MailboxID = "mb-2"
	require.NoError(t, store.SaveMail(older))
	mails, err = store.ListMails("mb-1")
	require.NoError(t, err)
	assert.Len(t, mails, 1)

	_, err = store.GetMail("missing")
	assert.ErrorIs(t, err, storage.ErrMailNotFound)
}

func TestMemoryStore_TriggerOperations(t *testing.T) {
	store := NewStore()

	binding := &domain.TriggerBinding{
		ID:         "trg-1",
		Model:      "sale.order",
		TemplateID: "tpl-1",
		Function:   domain.DefaultTriggerFunction,
	}
	require.NoError(t, store.SaveTrigger(binding))

	got, err := store.GetTrigger("trg-1")
	require.NoError(t, err)
	assert.Equal(t, "tpl-1", got.TemplateID)

	require.NoError(t, store.DeleteTrigger("trg-1"))
	_, err = store.GetTrigger("trg-1")
	assert.ErrorIs(t, err, storage.ErrTriggerNotFound)
}

func TestMemoryStore_Activities(t *testing.T) {
	store := NewStore()

	require.NoError(t, store.SaveActivity(&domain.Activity{ID: "act-1", Party: "party-1", Subject: "s1"}))
	require.NoError(t, store.SaveActivity(&domain.Activity{ID: "act-2", Party: "party-2", Subject: "s2"}))

	activities, err := store.ListActivities("party-1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "act-1", activities[0].ID)
}

func TestMemoryStore_Defaults(t *testing.T) {
	store := NewStore()

	defaults, err := store.GetDefaults()
	require.NoError(t, err)
	assert.Empty(t, defaults.SentMailboxID)

	defaults.SentMailboxID = "mb-sent"
	defaults.DraftMailboxID = "mb-draft"
	require.NoError(t, store.SaveDefaults(defaults))

	got, err := store.GetDefaults()
	require.NoError(t, err)
	assert.Equal(t, "mb-sent", got.SentMailboxID)
	assert.Equal(t, "mb-draft", got.DraftMailboxID)
	assert.Equal(t, uint(1), got.ID)
}
