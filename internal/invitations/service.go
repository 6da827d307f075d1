package invitations

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-hq/meridian/internal/authz"
)

// Enqueuer submits the invite email for background delivery.
type Enqueuer interface {
	EnqueueInviteEmail(ctx context.Context, email, inviteURL string, expiresAt time.Time) error
}

// RoleGranter binds the accepting user to the invited role.
type RoleGranter interface {
	Grant(ctx context.Context, orgID, userID int64, role string) error
}

// Service handles invitation business logic.
type Service struct {
	repo     Repository
	granter  RoleGranter
	enqueuer Enqueuer
	ttl      time.Duration
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance. baseURL is the public URL prefix the
// invite token is appended to.
func NewService(repo Repository, granter RoleGranter, enqueuer Enqueuer, ttl time.Duration, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		granter:  granter,
		enqueuer: enqueuer,
		ttl:      ttl,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// List returns the organization's invitations.
func (s *Service) List(ctx context.Context, orgID int64) ([]Invitation, error) {
	return s.repo.List(ctx, orgID)
}

// Create stores a pending invitation and queues the invite email. Email
// delivery failures are logged, the invitation still stands.
func (s *Service) Create(ctx context.Context, orgID, invitedBy int64, email, role string) (Invitation, error) {
	if !validRole(role) {
		return Invitation{}, ErrUnknownRole
	}
	inv := Invitation{
		OrganizationID: orgID,
		Email:          strings.ToLower(strings.TrimSpace(email)),
		Role:           role,
		Token:          uuid.NewString(),
		Status:         StatusPending,
		InvitedBy:      invitedBy,
		ExpiresAt:      s.now().Add(s.ttl),
	}
	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return Invitation{}, err
	}
	inviteURL := fmt.Sprintf("%s/invitations/accept?token=%s", s.baseURL, created.Token)
	if err := s.enqueuer.EnqueueInviteEmail(ctx, created.Email, inviteURL, created.ExpiresAt); err != nil {
		s.logger.Warn("enqueue invite email", slog.Any("error", err), slog.Int64("invitation_id", created.ID))
	}
	return created, nil
}

// Accept consumes the token: the accepting user is granted the invited role
// in the inviting organization and the invitation is marked accepted.
func (s *Service) Accept(ctx context.Context, token string, userID int64) (Invitation, error) {
	inv, err := s.repo.GetPendingByToken(ctx, token)
	if err != nil {
		return Invitation{}, err
	}
	if s.now().After(inv.ExpiresAt) {
		return Invitation{}, ErrExpired
	}
	if err := s.granter.Grant(ctx, inv.OrganizationID, userID, inv.Role); err != nil {
		return Invitation{}, fmt.Errorf("invitations: grant role: %w", err)
	}
	at := s.now()
	if err := s.repo.MarkAccepted(ctx, inv.ID, at); err != nil {
		return Invitation{}, err
	}
	inv.Status = StatusAccepted
	inv.AcceptedAt = &at
	return inv, nil
}

// Revoke cancels a pending invitation.
func (s *Service) Revoke(ctx context.Context, orgID, id int64) error {
	return s.repo.MarkRevoked(ctx, orgID, id)
}

func validRole(role string) bool {
	for _, name := range authz.SystemRoleNames() {
		if name == role {
			return true
		}
	}
	return false
}
