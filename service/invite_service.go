package service

import (
	"context"
	"fmt"
	"strings"

	"propertyhub.app/errors"
	"propertyhub.app/models"
	"propertyhub.app/pkg/logger"
)

// InviteCreator persists new invites.
type InviteCreator interface {
	Create(ctx context.Context, invite *models.Invite) error
}

// JobSubmitter enqueues background jobs.
type JobSubmitter interface {
	Submit(ctx context.Context, payload interface{}) error
}

// InviteService creates property invites and queues their invitation
// emails. The invite URL is built from the configured application base URL
// at submission time, and the invite id travels alongside it as its own
// payload field.
type InviteService struct {
	invites InviteCreator
	jobs    JobSubmitter
	baseURL string
	log     *logger.Logger
}

// NewInviteService creates an invite service submitting to the given queue.
func NewInviteService(invites InviteCreator, jobs JobSubmitter, baseURL string, log *logger.Logger) *InviteService {
	return &InviteService{
		invites: invites,
		jobs:    jobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.ForComponent("inviteService"),
	}
}

// SendInvite persists a new invite and queues its invitation email. The
// invite row is returned even when submission fails, so the caller can
// retry the email without minting a second token.
func (s *InviteService) SendInvite(ctx context.Context, propertyID, propertyName, email string) (*models.Invite, error) {
	if propertyID == "" {
		return nil, errors.NewValidationError("property id cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, errors.NewValidationError("invite recipient must be a valid email address")
	}

	invite := &models.Invite{PropertyID: propertyID, Email: email}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, errors.NewDatabaseError("failed to create invite", err)
	}

	payload := InviteEmailJobPayload{
		EmailJobPayload: EmailJobPayload{
			Recipient:    email,
			Subject:      fmt.Sprintf("You are invited to join %s on PropertyHub", propertyName),
			TemplateType: EmailTypeInvite,
			TemplateData: map[string]string{
				"propertyName": propertyName,
				"inviteUrl":    fmt.Sprintf("%s/invites/%s", s.baseURL, invite.Token),
			},
		},
		InviteID: invite.ID,
	}

	if err := s.jobs.Submit(ctx, payload); err != nil {
		s.log.Error("failed to queue invite email", "inviteId", invite.ID, "error", err)
		return invite, err
	}

	s.log.Info("invite queued", "inviteId", invite.ID, "propertyId", propertyID)
	return invite, nil
}
