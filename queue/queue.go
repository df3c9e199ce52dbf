// Package queue implements the durable background job queue on top of NATS
// JetStream, plus the dashboard registry exposing queue state to the admin
// surface.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"propertyhub.app/config"
	"propertyhub.app/errors"
	"propertyhub.app/pkg/logger"
)

// Job type names. Each names one queue and one consumer binding.
const (
	AuthEmailQueue   = "AUTH_EMAIL_QUEUE"
	InviteEmailQueue = "INVITE_EMAIL_QUEUE"
)

const (
	subjectPrefix = "jobs."
	jobIDHeader   = "Propertyhub-Job-Id"
)

// Broker wraps the NATS connection and ensures the job stream exists. The
// stream uses work-queue retention, so acknowledging a job removes its
// record and bounds queue growth.
type Broker struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	cfg *config.QueueConfig
	log *logger.Logger
}

// Connect establishes the NATS connection and creates the job stream.
func Connect(ctx context.Context, cfg *config.QueueConfig, log *logger.Logger) (*Broker, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("queue config cannot be nil", nil)
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, errors.NewQueueError("failed to connect to queue backend", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, errors.NewQueueError("failed to initialize jetstream", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cfg.StreamName,
		Subjects:  []string{subjectPrefix + ">"},
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		nc.Close()
		return nil, errors.NewQueueError("failed to create job stream", err)
	}

	log.Info("queue backend connected", "url", cfg.URL, "stream", cfg.StreamName)
	return &Broker{nc: nc, js: js, cfg: cfg, log: log}, nil
}

// JetStream returns the underlying JetStream handle.
func (b *Broker) JetStream() jetstream.JetStream {
	return b.js
}

// Config returns the queue configuration the broker was created with.
func (b *Broker) Config() *config.QueueConfig {
	return b.cfg
}

// Close shuts down the NATS connection.
func (b *Broker) Close() error {
	b.nc.Close()
	return nil
}

// Job is one claimed unit of work handed to a consumer handler.
type Job struct {
	ID      string
	Type    string
	Payload []byte
	Attempt int

	progress func() error
	log      *logger.Logger
}

// Progress reports handler progress to the broker. It doubles as a
// heartbeat: reporting resets the job's lease so long-running sends are not
// marked stalled mid-flight.
func (j *Job) Progress(pct int) {
	if j.log != nil {
		j.log.Debug("job progress", "jobId", j.ID, "type", j.Type, "pct", pct)
	}
	if j.progress == nil {
		return
	}
	if err := j.progress(); err != nil && j.log != nil {
		j.log.Warn("failed to report job progress", "jobId", j.ID, "error", err)
	}
}

// JobHandler executes one job. A returned error counts the attempt as
// failed and hands the job back to the broker's retry policy.
type JobHandler func(ctx context.Context, job *Job) error

// Queue binds one named job type to the broker: submission on the producer
// side, consumption with a concurrency bound on the worker side. Each Queue
// registers itself with the dashboard registry at construction; the
// registry deduplicates by queue name, so constructing several Queue values
// over the same job type yields a single dashboard panel.
type Queue struct {
	jobType string
	subject string
	js      jetstream.JetStream
	cfg     *config.QueueConfig
	log     *logger.Logger

	submitted   atomic.Int64
	completed   atomic.Int64
	failed      atomic.Int64
	redelivered atomic.Int64

	stopConsume func()
}

// New creates a queue for the given job type and registers it with the
// dashboard registry.
func New(js jetstream.JetStream, cfg *config.QueueConfig, jobType string, registry *DashboardRegistry, log *logger.Logger) *Queue {
	q := &Queue{
		jobType: jobType,
		subject: subjectPrefix + jobType,
		js:      js,
		cfg:     cfg,
		log:     log.ForComponent("queue").WithField("jobType", jobType),
	}

	if registry != nil {
		registry.Register(q)
	}

	return q
}

// Submit enqueues a job with the queue's retry policy. Submission is
// fire-and-forget from the request path's perspective: the returned error
// exists so callers can log it, not to block request success.
func (q *Queue) Submit(ctx context.Context, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.NewQueueError("failed to serialize job payload", err)
	}

	msg := nats.NewMsg(q.subject)
	msg.Header.Set(jobIDHeader, uuid.NewString())
	msg.Data = data

	if _, err := q.js.PublishMsg(ctx, msg); err != nil {
		q.log.Error("job submission failed", "error", err)
		return errors.NewQueueError(fmt.Sprintf("failed to submit %s job", q.jobType), err)
	}

	q.submitted.Add(1)
	q.log.Info("job submitted", "jobId", msg.Header.Get(jobIDHeader))
	return nil
}

// RegisterConsumer binds the handler to this queue's job type with at most
// concurrency jobs in flight on this process. Retry policy lives entirely
// here, not in handlers: a failed attempt is redelivered after the fixed
// backoff delay until MaxAttempts is exhausted, after which the job stays
// visible in the stream for manual inspection.
func (q *Queue) RegisterConsumer(ctx context.Context, concurrency int, handler JobHandler) error {
	if concurrency < 1 {
		return errors.NewValidationError("consumer concurrency must be at least 1")
	}
	if handler == nil {
		return errors.NewValidationError("consumer handler cannot be nil")
	}

	consumer, err := q.js.CreateOrUpdateConsumer(ctx, q.cfg.StreamName, q.consumerConfig(concurrency))
	if err != nil {
		return errors.NewQueueError(fmt.Sprintf("failed to create %s consumer", q.jobType), err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		q.dispatch(ctx, msg, handler)
	})
	if err != nil {
		return errors.NewQueueError(fmt.Sprintf("failed to start %s consumer", q.jobType), err)
	}

	q.stopConsume = cc.Stop
	q.log.Info("consumer registered", "concurrency", concurrency)
	return nil
}

// consumerConfig maps the queue's retry policy onto the broker: MaxDeliver
// bounds total attempts, BackOff fixes the delay between them, AckWait is
// the stall lease, and MaxAckPending bounds in-flight jobs.
func (q *Queue) consumerConfig(concurrency int) jetstream.ConsumerConfig {
	return jetstream.ConsumerConfig{
		Durable:       q.jobType,
		FilterSubject: q.subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    q.cfg.MaxAttempts,
		BackOff:       []time.Duration{time.Duration(q.cfg.BackoffDelayMs) * time.Millisecond},
		AckWait:       time.Duration(q.cfg.AckWaitSeconds) * time.Second,
		MaxAckPending: concurrency,
	}
}

// dispatch runs the handler for one delivery and reports the outcome back
// to the broker. Handler errors never propagate past this boundary.
func (q *Queue) dispatch(ctx context.Context, msg jetstream.Msg, handler JobHandler) {
	attempt := 1
	if meta, err := msg.Metadata(); err == nil {
		attempt = int(meta.NumDelivered)
	}

	job := &Job{
		ID:       msg.Headers().Get(jobIDHeader),
		Type:     q.jobType,
		Payload:  msg.Data(),
		Attempt:  attempt,
		progress: msg.InProgress,
		log:      q.log,
	}

	if attempt > 1 {
		// Redelivery means the previous attempt failed or its lease
		// expired without progress. Logged for operational visibility;
		// recovery itself is the broker's job.
		q.redelivered.Add(1)
		q.log.Warn("job redelivered", "jobId", job.ID, "attempt", attempt)
	}

	if err := handler(ctx, job); err != nil {
		q.failed.Add(1)
		q.log.Error("job execution failed", "jobId", job.ID, "attempt", attempt, "error", err)
		if nakErr := msg.NakWithDelay(time.Duration(q.cfg.BackoffDelayMs) * time.Millisecond); nakErr != nil {
			q.log.Error("failed to nak job", "jobId", job.ID, "error", nakErr)
		}
		return
	}

	// Ack removes the job record under work-queue retention.
	if err := msg.Ack(); err != nil {
		q.log.Error("failed to ack job", "jobId", job.ID, "error", err)
		return
	}

	q.completed.Add(1)
	q.log.Info("job completed", "jobId", job.ID, "attempt", attempt)
}

// StopConsumer stops in-flight consumption, letting claimed jobs finish.
func (q *Queue) StopConsumer() {
	if q.stopConsume != nil {
		q.stopConsume()
	}
}

// QueueName implements Adapter.
func (q *Queue) QueueName() string {
	return q.jobType
}

// Snapshot implements Adapter.
func (q *Queue) Snapshot() AdapterSnapshot {
	return AdapterSnapshot{
		Name:        q.jobType,
		Subject:     q.subject,
		Submitted:   q.submitted.Load(),
		Completed:   q.completed.Load(),
		Failed:      q.failed.Load(),
		Redelivered: q.redelivered.Load(),
	}
}
