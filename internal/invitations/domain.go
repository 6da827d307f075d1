package invitations

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken rejects tokens that are unknown, consumed or revoked.
	ErrInvalidToken = errors.New("invitations: invalid token")
	// ErrExpired rejects tokens past their expiry.
	ErrExpired = errors.New("invitations: invitation expired")
	// ErrUnknownRole rejects invitations naming a role outside the system set.
	ErrUnknownRole = errors.New("invitations: unknown role")
)

// Invitation status values.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRevoked  = "revoked"
)

// Invitation invites an email address into an organization with one of the
// system roles. The token is single use.
type Invitation struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organization_id"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Token          string     `json:"-"`
	Status         string     `json:"status"`
	InvitedBy      int64      `json:"invited_by"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
