package authz

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-hq/meridian/internal/shared"
)

// Middleware wires the access checker into HTTP handlers. Every mutating
// route mounts RequireAccess or RequirePermission ahead of payload
// validation and persistence.
type Middleware struct {
	Checker *Checker
	Logger  *slog.Logger
}

// RequireAccess ensures the session user holds at least one role in the
// organization addressed by the {orgID} URL parameter.
func (m Middleware) RequireAccess() func(http.Handler) http.Handler {
	return m.guard(func(r *http.Request, userID, orgID int64) (bool, error) {
		return m.Checker.HasAccess(r.Context(), userID, orgID)
	})
}

// RequirePermission ensures the session user holds the given permission in
// the organization addressed by the {orgID} URL parameter.
func (m Middleware) RequirePermission(perm Permission) func(http.Handler) http.Handler {
	return m.guard(func(r *http.Request, userID, orgID int64) (bool, error) {
		return m.Checker.HasPermission(r.Context(), userID, orgID, perm)
	})
}

func (m Middleware) guard(check func(r *http.Request, userID, orgID int64) (bool, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := m.currentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			orgID, ok := m.orgID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			allowed, err := check(r, userID, orgID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz check", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !allowed {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	return shared.CurrentUserID(r.Context())
}

func (m Middleware) orgID(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "orgID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
