package contacts

import (
	"context"
	"strings"
)

// Service handles contact business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByClient(ctx context.Context, orgID, clientID int64) ([]Contact, error) {
	return s.repo.ListByClient(ctx, orgID, clientID)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (Contact, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, contact Contact) (Contact, error) {
	normalize(&contact)
	return s.repo.Create(ctx, contact)
}

func (s *Service) Update(ctx context.Context, contact Contact) error {
	normalize(&contact)
	return s.repo.Update(ctx, contact)
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	return s.repo.Delete(ctx, orgID, id)
}

func normalize(c *Contact) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Role = strings.TrimSpace(c.Role)
}
