package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"

	"github.com/meridian-hq/meridian/internal/observability"
)

// Mailer delivers queued emails over SMTP.
type Mailer struct {
	Addr    string
	From    string
	Logger  *slog.Logger
	Metrics *observability.Metrics

	// send is swappable in tests.
	send func(addr, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer. addr is host:port of the SMTP relay.
func NewMailer(addr, from string, logger *slog.Logger, metrics *observability.Metrics) *Mailer {
	return &Mailer{
		Addr:    addr,
		From:    from,
		Logger:  logger,
		Metrics: metrics,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Handle processes TaskTypeSendEmail tasks.
func (m *Mailer) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		m.Metrics.RecordJob(TaskTypeSendEmail, "skipped")
		return asynq.SkipRetry
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		m.From, payload.To, payload.Subject, payload.Body)
	if err := m.send(m.Addr, m.From, []string{payload.To}, []byte(msg)); err != nil {
		m.Metrics.RecordJob(TaskTypeSendEmail, "failure")
		return fmt.Errorf("jobs: send email: %w", err)
	}
	m.Metrics.RecordJob(TaskTypeSendEmail, "success")
	m.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
