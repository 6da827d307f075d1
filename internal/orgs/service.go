package orgs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-hq/meridian/internal/authz"
)

// Bootstrapper prepares authorization for a newly created organization.
type Bootstrapper interface {
	SeedAdminOnly(ctx context.Context, orgID, userID int64) error
}

// Service handles organization business logic.
type Service struct {
	repo   Repository
	seeder Bootstrapper
	logger *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, seeder Bootstrapper, logger *slog.Logger) *Service {
	return &Service{repo: repo, seeder: seeder, logger: logger}
}

// Create inserts the organization and bootstraps authorization: the full
// permission catalog plus the admin role are seeded and the owner is
// granted admin. The owner can then invite further members.
func (s *Service) Create(ctx context.Context, name string, ownerID int64) (Organization, error) {
	org := Organization{Name: strings.TrimSpace(name), Slug: Slugify(name)}
	org, err := s.repo.Create(ctx, org)
	if err != nil {
		return Organization{}, err
	}
	if err := s.seeder.SeedAdminOnly(ctx, org.ID, ownerID); err != nil {
		return Organization{}, fmt.Errorf("orgs: bootstrap authorization: %w", err)
	}
	s.logger.Info("organization created",
		slog.Int64("org_id", org.ID),
		slog.Int64("owner_id", ownerID),
		slog.String("admin_role", authz.RoleAdmin))
	return org, nil
}

// Get returns one organization.
func (s *Service) Get(ctx context.Context, id int64) (Organization, error) {
	return s.repo.Get(ctx, id)
}

// ListForUser returns the organizations the user is a member of.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Organization, error) {
	return s.repo.ListForUser(ctx, userID)
}

// GetOverview loads the organization and its record counts in parallel.
func (s *Service) GetOverview(ctx context.Context, orgID int64) (Overview, error) {
	var overview Overview

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		org, err := s.repo.Get(ctx, orgID)
		if err != nil {
			return err
		}
		overview.Organization = org
		return nil
	})

	counts := []struct {
		resource string
		dest     *int64
	}{
		{"clients", &overview.Clients},
		{"suppliers", &overview.Suppliers},
		{"products", &overview.Products},
		{"members", &overview.Members},
	}
	for _, c := range counts {
		c := c
		g.Go(func() error {
			n, err := s.repo.CountResource(ctx, orgID, c.resource)
			if err != nil {
				return err
			}
			*c.dest = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return overview, nil
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
