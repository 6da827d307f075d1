package fiscalyears

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/shared"
)

type fakeRepo struct {
	nextID int64
	years  map[int64]FiscalYear
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{years: map[int64]FiscalYear{}}
}

func (f *fakeRepo) List(_ context.Context, orgID int64) ([]FiscalYear, error) {
	var out []FiscalYear
	for _, fy := range f.years {
		if fy.OrganizationID == orgID {
			out = append(out, fy)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, orgID, id int64) (FiscalYear, error) {
	fy, ok := f.years[id]
	if !ok || fy.OrganizationID != orgID {
		return FiscalYear{}, shared.ErrNotFound
	}
	return fy, nil
}

func (f *fakeRepo) Create(_ context.Context, fy FiscalYear) (FiscalYear, error) {
	f.nextID++
	fy.ID = f.nextID
	f.years[fy.ID] = fy
	return fy, nil
}

func (f *fakeRepo) Update(_ context.Context, fy FiscalYear) error {
	existing, ok := f.years[fy.ID]
	if !ok || existing.OrganizationID != fy.OrganizationID || existing.IsClosed {
		return shared.ErrNotFound
	}
	fy.IsClosed = existing.IsClosed
	f.years[fy.ID] = fy
	return nil
}

func (f *fakeRepo) SetClosed(_ context.Context, orgID, id int64, closed bool) error {
	fy, ok := f.years[id]
	if !ok || fy.OrganizationID != orgID {
		return shared.ErrNotFound
	}
	fy.IsClosed = closed
	f.years[id] = fy
	return nil
}

func (f *fakeRepo) AnyOverlapping(_ context.Context, orgID int64, start, end time.Time, excludeID int64) (bool, error) {
	probe := FiscalYear{StartDate: start, EndDate: end}
	for _, fy := range f.years {
		if fy.OrganizationID != orgID || fy.ID == excludeID {
			continue
		}
		if fy.Overlaps(probe) {
			return true, nil
		}
	}
	return false, nil
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestCreateRejectsInvalidRange(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY26",
		StartDate: date(2026, 12, 31), EndDate: date(2026, 1, 1),
	})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY25",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY25b",
		StartDate: date(2025, 7, 1), EndDate: date(2026, 6, 30),
	})
	assert.ErrorIs(t, err, ErrOverlap)

	// same range in another org is fine
	_, err = svc.Create(context.Background(), FiscalYear{
		OrganizationID: 2, Label: "FY25",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
	})
	assert.NoError(t, err)
}

func TestAdjacentYearsDoNotOverlap(t *testing.T) {
	svc := NewService(newFakeRepo())
	_, err := svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY25",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY26",
		StartDate: date(2026, 1, 1), EndDate: date(2026, 12, 31),
	})
	assert.NoError(t, err)
}

func TestUpdateExcludesSelfFromOverlapCheck(t *testing.T) {
	svc := NewService(newFakeRepo())
	created, err := svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY25",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
	})
	require.NoError(t, err)

	created.EndDate = date(2025, 11, 30)
	assert.NoError(t, svc.Update(context.Background(), created))
}

func TestClosedYearIsImmutable(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	created, err := svc.Create(context.Background(), FiscalYear{
		OrganizationID: 1, Label: "FY25",
		StartDate: date(2025, 1, 1), EndDate: date(2025, 12, 31),
	})
	require.NoError(t, err)
	require.NoError(t, svc.Close(context.Background(), 1, created.ID))

	created.Label = "FY25 revised"
	err = svc.Update(context.Background(), created)
	assert.ErrorIs(t, err, ErrClosed)

	// closing again is a no-op
	assert.NoError(t, svc.Close(context.Background(), 1, created.ID))
}
