package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/meridian-hq/meridian/internal/auth"
	"github.com/meridian-hq/meridian/internal/authz"
	"github.com/meridian-hq/meridian/internal/clients"
	"github.com/meridian-hq/meridian/internal/contacts"
	"github.com/meridian-hq/meridian/internal/fiscalyears"
	"github.com/meridian-hq/meridian/internal/invitations"
	"github.com/meridian-hq/meridian/internal/observability"
	"github.com/meridian-hq/meridian/internal/orgs"
	"github.com/meridian-hq/meridian/internal/products"
	"github.com/meridian-hq/meridian/internal/shared"
	"github.com/meridian-hq/meridian/internal/suppliers"
	"github.com/meridian-hq/meridian/internal/users"
	"github.com/meridian-hq/meridian/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler        *auth.Handler
	AuthzHandler       *authz.Handler
	OrgsHandler        *orgs.Handler
	ClientsHandler     *clients.Handler
	SuppliersHandler   *suppliers.Handler
	ProductsHandler    *products.Handler
	FiscalYearsHandler *fiscalyears.Handler
	ContactsHandler    *contacts.Handler
	InvitationsHandler *invitations.Handler
	UsersHandler       *users.Handler
	JobHandler         *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Meridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.InvitationsHandler != nil {
		r.Route("/invitations", params.InvitationsHandler.MountAcceptRoute)
	}

	r.Route("/orgs", func(r chi.Router) {
		params.OrgsHandler.MountRoutes(r)

		r.Route("/{orgID}", func(r chi.Router) {
			r.Route("/clients", func(r chi.Router) {
				params.ClientsHandler.MountRoutes(r)
				if params.ContactsHandler != nil {
					r.Route("/{clientID}/contacts", params.ContactsHandler.MountRoutes)
				}
			})
			r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/fiscal-years", params.FiscalYearsHandler.MountRoutes)
			if params.InvitationsHandler != nil {
				r.Route("/invitations", params.InvitationsHandler.MountRoutes)
			}
			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
			params.AuthzHandler.MountRoutes(r)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
