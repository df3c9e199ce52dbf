package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"propertyhub.app/errors"
)

type recordingProvider struct {
	to      string
	subject string
	body    string
	isHTML  bool
	err     error
}

func (p *recordingProvider) SendEmail(to, subject, body string, isHTML bool) error {
	if p.err != nil {
		return p.err
	}
	p.to = to
	p.subject = subject
	p.body = body
	p.isHTML = isHTML
	return nil
}

func TestEmailService_Send(t *testing.T) {
	t.Run("WelcomeTemplate", func(t *testing.T) {
		provider := &recordingProvider{}
		s := NewEmailService(provider)

		err := s.Send(SendOptions{
			To:           "tenant@example.com",
			Subject:      "Welcome",
			TemplateData: map[string]string{"name": "Alex"},
		}, EmailTypeWelcome)

		require.NoError(t, err)
		assert.Equal(t, "tenant@example.com", provider.to)
		assert.True(t, provider.isHTML)
		assert.Contains(t, provider.body, "Welcome to PropertyHub, Alex!")
	})

	t.Run("PasswordResetTemplate", func(t *testing.T) {
		provider := &recordingProvider{}
		s := NewEmailService(provider)

		err := s.Send(SendOptions{
			To:           "tenant@example.com",
			Subject:      "Reset your password",
			TemplateData: map[string]string{"resetUrl": "https://propertyhub.app/reset/abc"},
		}, EmailTypePasswordReset)

		require.NoError(t, err)
		assert.Contains(t, provider.body, "https://propertyhub.app/reset/abc")
	})

	t.Run("PasswordResetRequiresURL", func(t *testing.T) {
		s := NewEmailService(&recordingProvider{})

		err := s.Send(SendOptions{
			To:      "tenant@example.com",
			Subject: "Reset your password",
		}, EmailTypePasswordReset)

		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("InviteTemplate", func(t *testing.T) {
		provider := &recordingProvider{}
		s := NewEmailService(provider)

		err := s.Send(SendOptions{
			To:      "new-tenant@example.com",
			Subject: "You are invited",
			TemplateData: map[string]string{
				"propertyName": "Sunset Apartments",
				"inviteUrl":    "https://propertyhub.app/invites/tok",
			},
		}, EmailTypeInvite)

		require.NoError(t, err)
		assert.Contains(t, provider.body, "Sunset Apartments")
		assert.Contains(t, provider.body, "https://propertyhub.app/invites/tok")
	})

	t.Run("ReportNotificationTemplate", func(t *testing.T) {
		provider := &recordingProvider{}
		s := NewEmailService(provider)

		err := s.Send(SendOptions{
			To:      "landlord@example.com",
			Subject: "Report updated",
			TemplateData: map[string]string{
				"reportTitle":  "Leaking faucet",
				"reportStatus": "resolved",
			},
		}, EmailTypeReportNotification)

		require.NoError(t, err)
		assert.Contains(t, provider.body, "Leaking faucet")
		assert.Contains(t, provider.body, "resolved")
	})

	t.Run("UnknownTemplateRejected", func(t *testing.T) {
		s := NewEmailService(&recordingProvider{})

		err := s.Send(SendOptions{To: "a@b.com", Subject: "s"}, EmailType("nonsense"))
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("EmptyRecipientRejected", func(t *testing.T) {
		s := NewEmailService(&recordingProvider{})

		err := s.Send(SendOptions{Subject: "s"}, EmailTypeWelcome)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("ProviderErrorPropagates", func(t *testing.T) {
		s := NewEmailService(&recordingProvider{err: errors.NewEmailError("smtp down", nil)})

		err := s.Send(SendOptions{To: "a@b.com", Subject: "s"}, EmailTypeWelcome)
		require.Error(t, err)
	})
}
