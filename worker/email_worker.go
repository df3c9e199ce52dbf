// Package worker bridges broker job semantics to domain side effects: each
// worker decodes a claimed job's payload and performs an idempotent send.
package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"propertyhub.app/errors"
	"propertyhub.app/pkg/logger"
	"propertyhub.app/queue"
	"propertyhub.app/service"
)

// Mailer is the dispatch contract the workers consume.
type Mailer interface {
	Send(options service.SendOptions, emailType service.EmailType) error
}

// InviteMarker records that an invite email left the building.
type InviteMarker interface {
	MarkInviteSent(ctx context.Context, inviteID string, sentAt time.Time) error
}

// EmailWorker executes email dispatch jobs. It holds no retry logic of its
// own: an error returned from Execute counts the attempt as failed and the
// queue's retry policy takes over, which keeps the execution unit stateless
// and the policy auditable in one place.
type EmailWorker struct {
	mailer   Mailer
	validate *validator.Validate
	log      *logger.Logger
}

// NewEmailWorker creates a worker sending through the given mailer.
func NewEmailWorker(mailer Mailer, log *logger.Logger) *EmailWorker {
	return &EmailWorker{
		mailer:   mailer,
		validate: validator.New(),
		log:      log.ForComponent("emailWorker"),
	}
}

// Execute decodes the job payload, dispatches the email and reports full
// progress. Resending the same email on a retry is acceptable; the send is
// treated as idempotent.
func (w *EmailWorker) Execute(ctx context.Context, job *queue.Job) error {
	payload, err := w.decode(job)
	if err != nil {
		return err
	}

	if err := w.mailer.Send(service.SendOptions{
		To:           payload.Recipient,
		Subject:      payload.Subject,
		TemplateData: payload.TemplateData,
	}, payload.TemplateType); err != nil {
		w.log.Error("email dispatch failed", "jobId", job.ID, "recipient", payload.Recipient, "error", err)
		return err
	}

	job.Progress(100)
	w.log.Info("email dispatched", "jobId", job.ID, "recipient", payload.Recipient, "template", payload.TemplateType)
	return nil
}

func (w *EmailWorker) decode(job *queue.Job) (*service.EmailJobPayload, error) {
	var payload service.EmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return nil, errors.NewQueueError("failed to decode email job payload", err)
	}
	if err := w.validate.Struct(&payload); err != nil {
		return nil, errors.NewValidationError("invalid email job payload: " + err.Error())
	}
	return &payload, nil
}

// InviteEmailWorker is the invite variant: after a successful send it marks
// the invite row's sent timestamp through the repository.
type InviteEmailWorker struct {
	mailer   Mailer
	invites  InviteMarker
	validate *validator.Validate
	log      *logger.Logger
}

// NewInviteEmailWorker creates the invite email worker.
func NewInviteEmailWorker(mailer Mailer, invites InviteMarker, log *logger.Logger) *InviteEmailWorker {
	return &InviteEmailWorker{
		mailer:   mailer,
		invites:  invites,
		validate: validator.New(),
		log:      log.ForComponent("inviteEmailWorker"),
	}
}

// Execute dispatches the invite email and then stamps the invite as sent.
// A failure to stamp is logged but does not fail the job: the email is
// already out, and retrying would send it again just to fix a timestamp.
func (w *InviteEmailWorker) Execute(ctx context.Context, job *queue.Job) error {
	var payload service.InviteEmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return errors.NewQueueError("failed to decode invite job payload", err)
	}
	if err := w.validate.Struct(&payload); err != nil {
		return errors.NewValidationError("invalid invite job payload: " + err.Error())
	}

	if err := w.mailer.Send(service.SendOptions{
		To:           payload.Recipient,
		Subject:      payload.Subject,
		TemplateData: payload.TemplateData,
	}, payload.TemplateType); err != nil {
		w.log.Error("invite email dispatch failed", "jobId", job.ID, "inviteId", payload.InviteID, "error", err)
		return err
	}

	job.Progress(100)

	if err := w.invites.MarkInviteSent(ctx, payload.InviteID, time.Now()); err != nil {
		w.log.Error("failed to mark invite as sent", "jobId", job.ID, "inviteId", payload.InviteID, "error", err)
	}

	w.log.Info("invite email dispatched", "jobId", job.ID, "inviteId", payload.InviteID)
	return nil
}
