package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAuthzReconcile re-applies the permission catalog and role
	// templates across all organizations.
	TaskTypeAuthzReconcile = "authz:reconcile"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewInviteEmailTask builds the send-email task for an invitation link.
func NewInviteEmailTask(to, inviteURL string, expiresAt time.Time) (*asynq.Task, error) {
	body := fmt.Sprintf(
		"You have been invited to join an organization on Meridian.\n\n"+
			"Accept the invitation: %s\n\n"+
			"The link expires on %s.\n",
		inviteURL, expiresAt.Format("2 January 2006 15:04 MST"))
	return NewSendEmailTask(SendEmailPayload{
		To:      to,
		Subject: "You have been invited to Meridian",
		Body:    body,
	})
}

// NewAuthzReconcileTask constructs the reconcile task. It carries no payload.
func NewAuthzReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAuthzReconcile, nil)
}
