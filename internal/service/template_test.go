package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpmail/backend/internal/domain"
)

func TestSaveTemplateValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(f.store, nil)
	ctx := context.Background()

	_, err := svc.SaveTemplate(ctx, SaveTemplateInput{Model: "party.party"})
	assert.ErrorIs(t, err, ErrTemplateNameRequired)

	_, err = svc.SaveTemplate(ctx, SaveTemplateInput{Name: "no model"})
	assert.ErrorIs(t, err, ErrTemplateModelRequired)

	_, err = svc.SaveTemplate(ctx, SaveTemplateInput{Name: "bad", Model: "party.party", Engine: "genshi"})
	assert.ErrorIs(t, err, domain.ErrUnknownEngine)
}

func TestSaveTemplateDefaultsToRawEngine(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(f.store, nil)

	tpl, err := svc.SaveTemplate(context.Background(), SaveTemplateInput{
		Name:  "invoice notice",
		Model: "account.invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EngineRaw, tpl.Engine)
	assert.NotEmpty(t, tpl.ID)
	assert.False(t, tpl.CreatedAt.IsZero())
}

func TestSaveTemplateUpdateKeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(f.store, nil)
	ctx := context.Background()

	created, err := svc.SaveTemplate(ctx, SaveTemplateInput{Name: "v1", Model: "sale.order"})
	require.NoError(t, err)

	updated, err := svc.SaveTemplate(ctx, SaveTemplateInput{
		ID:    created.ID,
		Name:  "v2",
		Model: "sale.order",
	})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "v2", updated.Name)
}

func TestSaveTemplateAssignsReportLinkIDs(t *testing.T) {
	f := newFixture(t)
	svc := NewTemplateService(f.store, nil)

	tpl, err := svc.SaveTemplate(context.Background(), SaveTemplateInput{
		Name:  "with report",
		Model: "sale.order",
		Reports: []domain.ReportLink{
			{ReportID: "sale-order-report"},
		},
	})
	require.NoError(t, err)
	require.Len(t, tpl.Reports, 1)
	assert.NotEmpty(t, tpl.Reports[0].ID)
	assert.Equal(t, tpl.ID, tpl.Reports[0].TemplateID)
}

func TestMailboxServiceEnsure(t *testing.T) {
	f := newFixture(t)
	svc := NewMailboxService(f.store, nil)
	ctx := context.Background()

	// existing mailbox is returned, not duplicated
	mb, err := svc.EnsureMailbox(ctx, "sent", domain.RoleSent)
	require.NoError(t, err)
	assert.Equal(t, f.sentBox.ID, mb.ID)

	created, err := svc.EnsureMailbox(ctx, "archive", domain.RoleSent)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	again, err := svc.EnsureMailbox(ctx, "archive", domain.RoleSent)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
}

func TestMailboxServiceValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewMailboxService(f.store, nil)
	ctx := context.Background()

	_, err := svc.CreateMailbox(ctx, "", domain.RoleSent)
	assert.ErrorIs(t, err, ErrMailboxNameRequired)

	_, err = svc.CreateMailbox(ctx, "weird", "spam")
	assert.Error(t, err)
}

func TestActivityRecorder(t *testing.T) {
	f := newFixture(t)
	tpl := baseTemplate("with-party")
	tpl.Party = "{{ record.party }}"
	f.saveTemplate(t, tpl)

	recorder := NewActivityRecorder(f.store, nil)
	f.dispatcher.SetActivityRecorder(recorder)

	record := orderRecord("20")
	record.Fields["party"] = "party-42"

	rc := domain.RenderContext{Language: "en"}
	mails, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{record})
	require.NoError(t, err)
	require.Len(t, mails, 1)

	activities, err := f.store.ListActivities("party-42")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "mail:"+mails[0].ID, activities[0].Resource)
	assert.Equal(t, "Order SO-20", activities[0].Subject)
}

func TestActivityRecorderSkipsWithoutParty(t *testing.T) {
	f := newFixture(t)
	tpl := f.saveTemplate(t, baseTemplate("no-party"))
	f.dispatcher.SetActivityRecorder(NewActivityRecorder(f.store, nil))

	rc := domain.RenderContext{Language: "en"}
	_, err := f.dispatcher.RenderAndSend(context.Background(), rc, tpl.ID, []*domain.Record{orderRecord("21")})
	require.NoError(t, err)

	activities, err := f.store.ListActivities("")
	require.NoError(t, err)
	assert.Empty(t, activities)
}
