package orgs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextID  int64
	orgs    map[int64]Organization
	slugs   map[string]bool
	counts  map[string]int64
	members map[int64][]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:    map[int64]Organization{},
		slugs:   map[string]bool{},
		counts:  map[string]int64{},
		members: map[int64][]int64{},
	}
}

func (f *fakeRepo) Create(_ context.Context, org Organization) (Organization, error) {
	if f.slugs[org.Slug] {
		return Organization{}, ErrSlugTaken
	}
	f.nextID++
	org.ID = f.nextID
	org.CreatedAt = time.Now()
	org.UpdatedAt = org.CreatedAt
	f.orgs[org.ID] = org
	f.slugs[org.Slug] = true
	return org, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return Organization{}, errors.New("not found")
	}
	return org, nil
}

func (f *fakeRepo) ListForUser(_ context.Context, userID int64) ([]Organization, error) {
	var out []Organization
	for orgID, users := range f.members {
		for _, u := range users {
			if u == userID {
				out = append(out, f.orgs[orgID])
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) CountResource(_ context.Context, _ int64, resource string) (int64, error) {
	return f.counts[resource], nil
}

type fakeBootstrapper struct {
	calls []struct{ orgID, userID int64 }
	err   error
}

func (f *fakeBootstrapper) SeedAdminOnly(_ context.Context, orgID, userID int64) error {
	f.calls = append(f.calls, struct{ orgID, userID int64 }{orgID, userID})
	return f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateBootstrapsOwnerAsAdmin(t *testing.T) {
	repo := newFakeRepo()
	boot := &fakeBootstrapper{}
	svc := NewService(repo, boot, testLogger())

	org, err := svc.Create(context.Background(), "Acme Widgets", 42)
	require.NoError(t, err)
	assert.Equal(t, "acme-widgets", org.Slug)
	require.Len(t, boot.calls, 1)
	assert.Equal(t, org.ID, boot.calls[0].orgID)
	assert.Equal(t, int64(42), boot.calls[0].userID)
}

func TestCreateFailsWhenBootstrapFails(t *testing.T) {
	repo := newFakeRepo()
	boot := &fakeBootstrapper{err: errors.New("lock timeout")}
	svc := NewService(repo, boot, testLogger())

	_, err := svc.Create(context.Background(), "Acme", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bootstrap authorization")
}

func TestCreateDuplicateSlug(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeBootstrapper{}, testLogger())

	_, err := svc.Create(context.Background(), "Acme", 1)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "Acme", 2)
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestGetOverviewAggregatesCounts(t *testing.T) {
	repo := newFakeRepo()
	boot := &fakeBootstrapper{}
	svc := NewService(repo, boot, testLogger())
	org, err := svc.Create(context.Background(), "Acme", 1)
	require.NoError(t, err)
	repo.counts["clients"] = 3
	repo.counts["suppliers"] = 2
	repo.counts["products"] = 7
	repo.counts["members"] = 4

	overview, err := svc.GetOverview(context.Background(), org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, overview.Organization.ID)
	assert.Equal(t, int64(3), overview.Clients)
	assert.Equal(t, int64(2), overview.Suppliers)
	assert.Equal(t, int64(7), overview.Products)
	assert.Equal(t, int64(4), overview.Members)
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Acme Widgets":     "acme-widgets",
		"  Nordic / AB  ":  "nordic-ab",
		"Multi   Space":    "multi-space",
		"Trailing Dash---": "trailing-dash",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), input)
	}
}
