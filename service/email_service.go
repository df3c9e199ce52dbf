// Package service implements the email dispatch contract consumed by the
// background workers: template resolution keyed by email type plus the
// transport send.
package service

import (
	"fmt"

	"propertyhub.app/errors"
	"propertyhub.app/providers"
)

// EmailType selects the template an email is rendered with.
type EmailType string

const (
	EmailTypeWelcome            EmailType = "welcome"
	EmailTypePasswordReset      EmailType = "passwordReset"
	EmailTypeInvite             EmailType = "invite"
	EmailTypeReportNotification EmailType = "reportNotification"
)

// SendOptions carries everything a single dispatch needs beyond the
// template choice.
type SendOptions struct {
	To           string
	Subject      string
	TemplateData map[string]string
}

// EmailService renders templates and dispatches them through a provider
type EmailService struct {
	provider providers.EmailProvider
}

// NewEmailService creates a new email service with the specified provider
func NewEmailService(provider providers.EmailProvider) *EmailService {
	return &EmailService{
		provider: provider,
	}
}

// Send renders the template selected by emailType and dispatches the
// result. An unknown template or a transport failure returns an error for
// the caller (the worker) to hand back to the queue's retry policy.
func (s *EmailService) Send(options SendOptions, emailType EmailType) error {
	if options.To == "" {
		return errors.NewValidationError("recipient email cannot be empty")
	}
	if options.Subject == "" {
		return errors.NewValidationError("email subject cannot be empty")
	}

	body, err := s.render(emailType, options.TemplateData)
	if err != nil {
		return err
	}

	return s.provider.SendEmail(options.To, options.Subject, body, true)
}

// render produces the HTML body for the given template type.
func (s *EmailService) render(emailType EmailType, data map[string]string) (string, error) {
	switch emailType {
	case EmailTypeWelcome:
		return fmt.Sprintf(
			"<p>Welcome to PropertyHub, %s!</p>"+
				"<p>Your account is ready. You can now browse your properties and file maintenance reports.</p>",
			data["name"],
		), nil

	case EmailTypePasswordReset:
		if data["resetUrl"] == "" {
			return "", errors.NewValidationError("password reset email requires a resetUrl")
		}
		return fmt.Sprintf(
			"<p>We received a request to reset your password.</p>"+
				"<p><a href=\"%s\">Reset your password</a></p>"+
				"<p>This link will expire in 24 hours. If you did not request a reset, ignore this email.</p>",
			data["resetUrl"],
		), nil

	case EmailTypeInvite:
		if data["inviteUrl"] == "" {
			return "", errors.NewValidationError("invite email requires an inviteUrl")
		}
		return fmt.Sprintf(
			"<p>You have been invited to join %s on PropertyHub.</p>"+
				"<p><a href=\"%s\">Accept the invitation</a></p>"+
				"<p>This invitation will expire in 7 days.</p>",
			data["propertyName"], data["inviteUrl"],
		), nil

	case EmailTypeReportNotification:
		return fmt.Sprintf(
			"<p>A maintenance report was updated: <strong>%s</strong></p>"+
				"<p>Status: %s</p>"+
				"<p>Log in to PropertyHub to review the details.</p>",
			data["reportTitle"], data["reportStatus"],
		), nil

	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown email type: %s", emailType))
	}
}
