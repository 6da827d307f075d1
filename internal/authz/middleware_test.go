package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-hq/meridian/internal/shared"
)

func testSession(t *testing.T, userID string) *shared.Session {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	manager := shared.NewSessionManager(client, "meridian_session", "test-secret", time.Hour, false)
	sess, err := manager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return sess
}

func middlewareRouter(t *testing.T, mw Middleware) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/orgs/{orgID}", func(r chi.Router) {
		r.With(mw.RequireAccess()).Get("/clients", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.With(mw.RequirePermission(PermClientsDelete)).Delete("/clients/1", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return r
}

func TestMiddlewareRejectsAnonymous(t *testing.T) {
	store := seededStore(t)
	router := middlewareRouter(t, Middleware{Checker: NewChecker(store)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/1/clients", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsNonMember(t *testing.T) {
	store := seededStore(t)
	router := middlewareRouter(t, Middleware{Checker: NewChecker(store)})

	req := httptest.NewRequest(http.MethodGet, "/orgs/1/clients", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), testSession(t, "7")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareAllowsMember(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, NewBinder(store).Grant(context.Background(), 1, 7, RoleViewer))
	router := middlewareRouter(t, Middleware{Checker: NewChecker(store)})

	req := httptest.NewRequest(http.MethodGet, "/orgs/1/clients", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), testSession(t, "7")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareEnforcesFinePermission(t *testing.T) {
	store := seededStore(t)
	require.NoError(t, NewBinder(store).Grant(context.Background(), 1, 7, RoleViewer))
	router := middlewareRouter(t, Middleware{Checker: NewChecker(store)})

	req := httptest.NewRequest(http.MethodDelete, "/orgs/1/clients/1", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), testSession(t, "7")))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "viewer cannot delete")

	require.NoError(t, NewBinder(store).Grant(context.Background(), 1, 7, RoleManager))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
