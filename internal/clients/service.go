package clients

import (
	"context"
	"strings"

	"github.com/meridian-hq/meridian/internal/platform/cache"
)

// CacheInvalidator drops derived listings after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

// Service handles client business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
}

// NewService builds Service instance.
func NewService(repo Repository, invalidator CacheInvalidator) *Service {
	return &Service{repo: repo, cache: invalidator}
}

// List returns clients matching the filters plus the unfiltered total.
func (s *Service) List(ctx context.Context, orgID int64, filters ListFilters) ([]Client, int, error) {
	return s.repo.List(ctx, orgID, filters)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, orgID, id int64) (Client, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Create stores a new client and invalidates the listing cache.
func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	normalize(&client)
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return Client{}, err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(client.OrganizationID, "clients"))
	return created, nil
}

// Update replaces the client's mutable fields.
func (s *Service) Update(ctx context.Context, client Client) error {
	normalize(&client)
	if err := s.repo.Update(ctx, client); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(client.OrganizationID, "clients"))
	return nil
}

// Delete removes the client.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(orgID, "clients"))
	return nil
}

func normalize(c *Client) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
}
