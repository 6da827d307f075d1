package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMailerSendsInviteEmail(t *testing.T) {
	var gotTo []string
	var gotMsg []byte
	m := NewMailer("localhost:1025", "noreply@meridian.test", discardLogger(), observability.NewMetrics())
	m.send = func(_, _ string, to []string, msg []byte) error {
		gotTo = to
		gotMsg = msg
		return nil
	}

	expires := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	task, err := NewInviteEmailTask("member@example.com", "https://app.example.com/invitations/accept?token=abc", expires)
	require.NoError(t, err)

	require.NoError(t, m.Handle(context.Background(), task))
	assert.Equal(t, []string{"member@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "token=abc")
	assert.Contains(t, string(gotMsg), "Subject: You have been invited to Meridian")
}

func TestMailerSkipsMalformedPayload(t *testing.T) {
	m := NewMailer("localhost:1025", "noreply@meridian.test", discardLogger(), observability.NewMetrics())
	m.send = func(_, _ string, _ []string, _ []byte) error {
		t.Fatal("send must not be called")
		return nil
	}
	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	err := m.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestMailerPropagatesSendFailure(t *testing.T) {
	m := NewMailer("localhost:1025", "noreply@meridian.test", discardLogger(), observability.NewMetrics())
	m.send = func(_, _ string, _ []string, _ []byte) error {
		return errors.New("relay down")
	}
	task, err := NewSendEmailTask(SendEmailPayload{To: "x@example.com", Subject: "s", Body: "b"})
	require.NoError(t, err)
	assert.Error(t, m.Handle(context.Background(), task))
}
