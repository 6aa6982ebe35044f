package service

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Audit event kinds.
const (
	AuditLoginSuccess    = "login_success"
	AuditLoginFailure    = "login_failure"
	AuditTokenIssued     = "token_issued"
	AuditTokenRotated    = "token_rotated"
	AuditTokenRevoked    = "token_revoked"
	AuditValidationToken = "validation_token_issued"
	AuditResetToken      = "reset_token_issued"
	AuditPasswordReset   = "password_reset"
	AuditValidated       = "profile_validated"
)

// AuditEvent is one structured record of something security-relevant.
type AuditEvent struct {
	Time       time.Time
	Kind       string
	ProfileID  string
	PlatformID string
	Email      string
	IP         string
	Detail     string
}

// Auditor writes audit events off the request path. Emit never blocks: when
// the buffer is full the event is dropped and counted. At-most-once is the
// contract; auth flows must not slow down or fail because of auditing.
type Auditor struct {
	Logger *slog.Logger

	events  chan AuditEvent
	dropped atomic.Int64
	doneCh  chan struct{}
}

// NewAuditor creates an auditor with the given buffer size and starts its
// worker. If buffer is 0 or negative, defaults to 256.
func NewAuditor(logger *slog.Logger, buffer int) *Auditor {
	if buffer <= 0 {
		buffer = 256
	}
	a := &Auditor{
		Logger: logger,
		events: make(chan AuditEvent, buffer),
		doneCh: make(chan struct{}),
	}
	go a.run()
	return a
}

// Emit queues an event without blocking. Events are dropped when the buffer
// is full.
func (a *Auditor) Emit(ev AuditEvent) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	select {
	case a.events <- ev:
	default:
		a.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the buffer was full.
func (a *Auditor) Dropped() int64 {
	return a.dropped.Load()
}

// Close drains queued events and stops the worker.
func (a *Auditor) Close() {
	close(a.events)
	<-a.doneCh
}

func (a *Auditor) run() {
	defer close(a.doneCh)
	for ev := range a.events {
		a.Logger.Info("audit",
			slog.String("kind", ev.Kind),
			slog.Time("at", ev.Time),
			slog.String("profile_id", ev.ProfileID),
			slog.String("platform_id", ev.PlatformID),
			slog.String("email", ev.Email),
			slog.String("ip", ev.IP),
			slog.String("detail", ev.Detail),
		)
	}
}
