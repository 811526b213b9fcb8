package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpmail/backend/internal/domain"
)

func TestOutboxFlusherDeliversQueuedMail(t *testing.T) {
	f := newFixture(t)
	tpl := baseTemplate("queued-flush")
	tpl.Queue = true
	f.saveTemplate(t, tpl)
	rc := domain.RenderContext{Language: "en"}

	mails, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{orderRecord("30")})
	require.NoError(t, err)
	require.Len(t, mails, 1)
	require.Equal(t, f.outbox.ID, mails[0].MailboxID)
	require.Equal(t, 0, f.relay.sendCount())

	flusher := NewOutboxFlusher(f.store, f.dispatcher, 2, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = flusher.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return f.relay.sendCount() == 1
	}, 2*time.Second, 10*time.Millisecond, "queued mail should be delivered by the flusher")

	cancel()
	<-done

	stored, err := f.store.GetMail(mails[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Sent)
	assert.Equal(t, f.sentBox.ID, stored.MailboxID, "delivered mail moves to the sent mailbox")
}

func TestOutboxFlusherDrainsTemplateOutbox(t *testing.T) {
	f := newFixture(t)
	teamBox := &domain.Mailbox{ID: "team-outbox", Name: "team-outbox", Role: domain.RoleOutbox}
	require.NoError(t, f.store.SaveMailbox(teamBox))

	tpl := baseTemplate("queued-own-box")
	tpl.Queue = true
	tpl.OutboxMailboxID = teamBox.ID
	f.saveTemplate(t, tpl)
	rc := domain.RenderContext{Language: "en"}

	mails, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{orderRecord("32")})
	require.NoError(t, err)
	require.Len(t, mails, 1)
	require.Equal(t, teamBox.ID, mails[0].MailboxID)
	require.Equal(t, 0, f.relay.sendCount())

	flusher := NewOutboxFlusher(f.store, f.dispatcher, 2, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = flusher.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		return f.relay.sendCount() == 1
	}, 2*time.Second, 10*time.Millisecond, "mail queued in a template-specific outbox must be delivered too")

	cancel()
	<-done

	stored, err := f.store.GetMail(mails[0].ID)
	require.NoError(t, err)
	assert.True(t, stored.Sent)
	assert.Equal(t, f.sentBox.ID, stored.MailboxID)
}

func TestOutboxFlusherMovesInvalidRecipientsToDraft(t *testing.T) {
	f := newFixture(t)
	tpl := baseTemplate("queued-bad-recipient")
	tpl.Queue = true
	f.saveTemplate(t, tpl)
	rc := domain.RenderContext{Language: "en"}

	bad := orderRecord("33")
	bad.Fields["email"] = "not-an-address"
	mails, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{bad})
	require.NoError(t, err)
	require.Len(t, mails, 1)
	require.Equal(t, f.outbox.ID, mails[0].MailboxID)

	flusher := NewOutboxFlusher(f.store, f.dispatcher, 1, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = flusher.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		stored, err := f.store.GetMail(mails[0].ID)
		return err == nil && stored.MailboxID == f.draftBox.ID
	}, 2*time.Second, 10*time.Millisecond, "unsendable queued mail moves to the draft mailbox")

	cancel()
	<-done

	stored, err := f.store.GetMail(mails[0].ID)
	require.NoError(t, err)
	assert.False(t, stored.Sent)
	assert.Equal(t, 0, f.relay.sendCount())
}

func TestOutboxFlusherLeavesFailedMailQueued(t *testing.T) {
	f := newFixture(t)
	f.relay.fail = assert.AnError
	tpl := baseTemplate("queued-stuck")
	tpl.Queue = true
	f.saveTemplate(t, tpl)
	rc := domain.RenderContext{Language: "en"}

	mails, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{orderRecord("31")})
	require.NoError(t, err)
	require.Len(t, mails, 1)

	flusher := NewOutboxFlusher(f.store, f.dispatcher, 1, 10*time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = flusher.Run(ctx)

	stored, err := f.store.GetMail(mails[0].ID)
	require.NoError(t, err)
	assert.False(t, stored.Sent)
	assert.Equal(t, f.outbox.ID, stored.MailboxID)
}
