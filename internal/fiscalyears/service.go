package fiscalyears

import (
	"context"
	"strings"
)

// Service handles fiscal year business logic.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, orgID int64) ([]FiscalYear, error) {
	return s.repo.List(ctx, orgID)
}

func (s *Service) Get(ctx context.Context, orgID, id int64) (FiscalYear, error) {
	return s.repo.Get(ctx, orgID, id)
}

// Create validates the date range against existing years before inserting.
func (s *Service) Create(ctx context.Context, fy FiscalYear) (FiscalYear, error) {
	fy.Label = strings.TrimSpace(fy.Label)
	if err := s.checkRange(ctx, fy, 0); err != nil {
		return FiscalYear{}, err
	}
	return s.repo.Create(ctx, fy)
}

// Update rejects closed years and overlapping ranges.
func (s *Service) Update(ctx context.Context, fy FiscalYear) error {
	fy.Label = strings.TrimSpace(fy.Label)
	existing, err := s.repo.Get(ctx, fy.OrganizationID, fy.ID)
	if err != nil {
		return err
	}
	if existing.IsClosed {
		return ErrClosed
	}
	if err := s.checkRange(ctx, fy, fy.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, fy)
}

// Close marks the year immutable. Closing an already closed year is a no-op.
func (s *Service) Close(ctx context.Context, orgID, id int64) error {
	if _, err := s.repo.Get(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.SetClosed(ctx, orgID, id, true)
}

func (s *Service) checkRange(ctx context.Context, fy FiscalYear, excludeID int64) error {
	if !fy.EndDate.After(fy.StartDate) {
		return ErrInvalidRange
	}
	overlaps, err := s.repo.AnyOverlapping(ctx, fy.OrganizationID, fy.StartDate, fy.EndDate, excludeID)
	if err != nil {
		return err
	}
	if overlaps {
		return ErrOverlap
	}
	return nil
}
