package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/shared"
)

type fakeRepo struct {
	nextID  int64
	clients map[int64]Client
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{clients: map[int64]Client{}}
}

func (f *fakeRepo) List(_ context.Context, orgID int64, _ ListFilters) ([]Client, int, error) {
	var out []Client
	for _, c := range f.clients {
		if c.OrganizationID == orgID {
			out = append(out, c)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) Get(_ context.Context, orgID, id int64) (Client, error) {
	c, ok := f.clients[id]
	if !ok || c.OrganizationID != orgID {
		return Client{}, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) Create(_ context.Context, client Client) (Client, error) {
	for _, existing := range f.clients {
		if existing.OrganizationID == client.OrganizationID && existing.Code == client.Code {
			return Client{}, ErrCodeTaken
		}
	}
	f.nextID++
	client.ID = f.nextID
	f.clients[client.ID] = client
	return client, nil
}

func (f *fakeRepo) Update(_ context.Context, client Client) error {
	existing, ok := f.clients[client.ID]
	if !ok || existing.OrganizationID != client.OrganizationID {
		return shared.ErrNotFound
	}
	f.clients[client.ID] = client
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, orgID, id int64) error {
	c, ok := f.clients[id]
	if !ok || c.OrganizationID != orgID {
		return shared.ErrNotFound
	}
	delete(f.clients, id)
	return nil
}

type fakeInvalidator struct {
	tags []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, tags ...string) {
	f.tags = append(f.tags, tags...)
}

func TestCreateNormalizesAndInvalidates(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	svc := NewService(repo, inv)

	created, err := svc.Create(context.Background(), Client{
		OrganizationID: 7,
		Code:           "  acme ",
		Name:           " Acme Ltd ",
		Email:          "Billing@Acme.COM",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME", created.Code)
	assert.Equal(t, "Acme Ltd", created.Name)
	assert.Equal(t, "billing@acme.com", created.Email)
	assert.Equal(t, []string{"meridian:org:7:clients"}, inv.tags)
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	svc := NewService(repo, inv)

	_, err := svc.Create(context.Background(), Client{OrganizationID: 1, Code: "ACME", Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), Client{OrganizationID: 1, Code: "acme", Name: "Other"})
	assert.ErrorIs(t, err, ErrCodeTaken)
	assert.Len(t, inv.tags, 1, "failed create must not invalidate")
}

func TestUpdateMissingClient(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeInvalidator{})
	err := svc.Update(context.Background(), Client{ID: 99, OrganizationID: 1, Code: "X", Name: "X"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteScopedToOrganization(t *testing.T) {
	repo := newFakeRepo()
	inv := &fakeInvalidator{}
	svc := NewService(repo, inv)
	created, err := svc.Create(context.Background(), Client{OrganizationID: 1, Code: "A", Name: "A"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), 2, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = svc.Delete(context.Background(), 1, created.ID)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), 1, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
