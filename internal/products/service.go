package products

import (
	"context"
	"errors"
	"strings"

	"github.com/meridian-hq/meridian/internal/platform/cache"
)

// ErrInvalidPrice rejects negative prices.
var ErrInvalidPrice = errors.New("products: price must not be negative")

// CacheInvalidator drops derived listings after a mutation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string)
}

// Service handles product business logic.
type Service struct {
	repo  Repository
	cache CacheInvalidator
}

// NewService builds Service instance.
func NewService(repo Repository, invalidator CacheInvalidator) *Service {
	return &Service{repo: repo, cache: invalidator}
}

func (s *Service) List(ctx context.Context, orgID int64, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, orgID, filters)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (Product, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := normalize(&product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(product.OrganizationID, "products"))
	return created, nil
}

func (s *Service) Update(ctx context.Context, product Product) error {
	if err := normalize(&product); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(product.OrganizationID, "products"))
	return nil
}

func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.OrgTag(orgID, "products"))
	return nil
}

func normalize(p *Product) error {
	p.SKU = strings.ToUpper(strings.TrimSpace(p.SKU))
	p.Name = strings.TrimSpace(p.Name)
	if p.PriceCents < 0 {
		return ErrInvalidPrice
	}
	return nil
}
