package suppliers

import (
	"context"
	"strings"

	"github.com/meridian-hq/meridian/internal/platform/cache"
)

// CacheInvalidator drops derived listings after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

// Service handles supplier business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
}

// NewService builds Service instance.
func NewService(repo Repository, invalidator CacheInvalidator) *Service {
	return &Service{repo: repo, cache: invalidator}
}

func (s *Service) List(ctx context.Context, orgID int64, filters ListFilters) ([]Supplier, int, error) {
	return s.repo.List(ctx, orgID, filters)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (Supplier, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	normalize(&supplier)
	created, err := s.repo.Create(ctx, supplier)
	if err != nil {
		return Supplier{}, err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(supplier.OrganizationID, "suppliers"))
	return created, nil
}

func (s *Service) Update(ctx context.Context, supplier Supplier) error {
	normalize(&supplier)
	if err := s.repo.Update(ctx, supplier); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(supplier.OrganizationID, "suppliers"))
	return nil
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(orgID, "suppliers"))
	return nil
}

func normalize(s *Supplier) {
	s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
}
