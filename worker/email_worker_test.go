package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"propertyhub.app/errors"
	"propertyhub.app/models"
	"propertyhub.app/pkg/logger"
	"propertyhub.app/queue"
	"propertyhub.app/repository"
	"propertyhub.app/service"
)

// fakeMailer records dispatches and optionally fails them.
type fakeMailer struct {
	sent    []service.SendOptions
	types   []service.EmailType
	sendErr error
}

func (m *fakeMailer) Send(options service.SendOptions, emailType service.EmailType) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, options)
	m.types = append(m.types, emailType)
	return nil
}

func emailJob(t *testing.T, payload interface{}) *queue.Job {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.AuthEmailQueue, Payload: data, Attempt: 1}
}

func TestEmailWorker_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("DispatchesEmail", func(t *testing.T) {
		mailer := &fakeMailer{}
		w := NewEmailWorker(mailer, logger.New())

		job := emailJob(t, service.EmailJobPayload{
			Recipient:    "tenant@example.com",
			Subject:      "Welcome to PropertyHub",
			TemplateType: service.EmailTypeWelcome,
			TemplateData: map[string]string{"name": "Alex"},
		})

		require.NoError(t, w.Execute(ctx, job))
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "tenant@example.com", mailer.sent[0].To)
		assert.Equal(t, service.EmailTypeWelcome, mailer.types[0])
	})

	t.Run("TransportFailurePropagatesToQueue", func(t *testing.T) {
		mailer := &fakeMailer{sendErr: errors.NewEmailError("smtp unavailable", nil)}
		w := NewEmailWorker(mailer, logger.New())

		job := emailJob(t, service.EmailJobPayload{
			Recipient:    "tenant@example.com",
			Subject:      "Welcome",
			TemplateType: service.EmailTypeWelcome,
		})

		err := w.Execute(ctx, job)
		require.Error(t, err)
	})

	t.Run("MalformedPayloadRejected", func(t *testing.T) {
		w := NewEmailWorker(&fakeMailer{}, logger.New())

		job := &queue.Job{ID: "job-bad", Payload: []byte("not json")}
		err := w.Execute(ctx, job)
		require.Error(t, err)
		assert.True(t, errors.IsQueueError(err))
	})

	t.Run("InvalidRecipientRejected", func(t *testing.T) {
		mailer := &fakeMailer{}
		w := NewEmailWorker(mailer, logger.New())

		job := emailJob(t, service.EmailJobPayload{
			Recipient:    "not-an-email",
			Subject:      "Welcome",
			TemplateType: service.EmailTypeWelcome,
		})

		err := w.Execute(ctx, job)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, mailer.sent)
	})
}

func setupInviteDB(t *testing.T) (*gorm.DB, *repository.InviteRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Invite{}))

	return db, repository.NewInviteRepository(db)
}

func TestInviteEmailWorker_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsAndMarksInviteSent", func(t *testing.T) {
		_, invites := setupInviteDB(t)

		invite := &models.Invite{PropertyID: "prop-1", Email: "new-tenant@example.com"}
		require.NoError(t, invites.Create(ctx, invite))
		require.Nil(t, invite.SentAt)

		mailer := &fakeMailer{}
		w := NewInviteEmailWorker(mailer, invites, logger.New())

		job := emailJob(t, service.InviteEmailJobPayload{
			EmailJobPayload: service.EmailJobPayload{
				Recipient:    "new-tenant@example.com",
				Subject:      "You are invited",
				TemplateType: service.EmailTypeInvite,
				TemplateData: map[string]string{
					"propertyName": "Sunset Apartments",
					"inviteUrl":    "https://propertyhub.app/invites/" + invite.Token,
				},
			},
			InviteID: invite.ID,
		})

		require.NoError(t, w.Execute(ctx, job))
		require.Len(t, mailer.sent, 1)

		updated, err := invites.FindByID(ctx, invite.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		require.NotNil(t, updated.SentAt)
		assert.WithinDuration(t, time.Now(), *updated.SentAt, 5*time.Second)
	})

	t.Run("MissingInviteIDRejected", func(t *testing.T) {
		_, invites := setupInviteDB(t)
		mailer := &fakeMailer{}
		w := NewInviteEmailWorker(mailer, invites, logger.New())

		job := emailJob(t, service.InviteEmailJobPayload{
			EmailJobPayload: service.EmailJobPayload{
				Recipient:    "new-tenant@example.com",
				Subject:      "You are invited",
				TemplateType: service.EmailTypeInvite,
			},
		})

		err := w.Execute(ctx, job)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Empty(t, mailer.sent)
	})

	t.Run("SendFailureLeavesInviteUnsent", func(t *testing.T) {
		_, invites := setupInviteDB(t)

		invite := &models.Invite{PropertyID: "prop-1", Email: "new-tenant@example.com"}
		require.NoError(t, invites.Create(ctx, invite))

		w := NewInviteEmailWorker(&fakeMailer{sendErr: errors.NewEmailError("smtp down", nil)}, invites, logger.New())

		job := emailJob(t, service.InviteEmailJobPayload{
			EmailJobPayload: service.EmailJobPayload{
				Recipient:    "new-tenant@example.com",
				Subject:      "You are invited",
				TemplateType: service.EmailTypeInvite,
			},
			InviteID: invite.ID,
		})

		require.Error(t, w.Execute(ctx, job))

		updated, err := invites.FindByID(ctx, invite.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Nil(t, updated.SentAt)
	})

	t.Run("MarkSentFailureDoesNotFailJob", func(t *testing.T) {
		// The email is already out; a timestamp update on a missing
		// invite row must not trigger a duplicate send via retry.
		_, invites := setupInviteDB(t)
		mailer := &fakeMailer{}
		w := NewInviteEmailWorker(mailer, invites, logger.New())

		job := emailJob(t, service.InviteEmailJobPayload{
			EmailJobPayload: service.EmailJobPayload{
				Recipient:    "new-tenant@example.com",
				Subject:      "You are invited",
				TemplateType: service.EmailTypeInvite,
			},
			InviteID: "no-such-invite",
		})

		require.NoError(t, w.Execute(ctx, job))
		require.Len(t, mailer.sent, 1)
	})
}
