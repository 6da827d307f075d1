package contacts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hq/meridian/internal/authz"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/shared"
)

// Handler manages contact endpoints under
// /orgs/{orgID}/clients/{clientID}/contacts.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    authz.Middleware
	audit    *shared.AuditLogger
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware, audit *shared.AuditLogger) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, audit: audit, validate: validator.New()}
}

// MountRoutes registers contact routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermContactsRead))
		r.Get("/", h.list)
		r.Get("/{contactID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermContactsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermContactsUpdate))
		r.Put("/{contactID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermContactsDelete))
		r.Delete("/{contactID}", h.delete)
	})
}

type contactRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
	Role  string `json:"role" validate:"omitempty,max=100"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathID(r, "clientID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	contacts, err := h.service.ListByClient(r.Context(), orgIDParam(r), clientID)
	if err != nil {
		h.logger.Error("list contacts failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if contacts == nil {
		contacts = []Contact{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "contactID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	contact, err := h.service.Get(r.Context(), orgIDParam(r), id)
	if err != nil {
		h.respondErr(w, err, "get contact")
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	clientID, ok := pathID(r, "clientID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), Contact{
		OrganizationID: orgID,
		ClientID:       clientID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           req.Role,
	})
	if err != nil {
		h.respondErr(w, err, "create contact")
		return
	}
	h.record(r, orgID, "contact.create", created.ID, map[string]any{"client_id": clientID})
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := pathID(r, "contactID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	err := h.service.Update(r.Context(), Contact{
		ID:             id,
		OrganizationID: orgID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           req.Role,
	})
	if err != nil {
		h.respondErr(w, err, "update contact")
		return
	}
	h.record(r, orgID, "contact.update", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := pathID(r, "contactID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	if err := h.service.Delete(r.Context(), orgID, id); err != nil {
		h.respondErr(w, err, "delete contact")
		return
	}
	h.record(r, orgID, "contact.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (contactRequest, bool) {
	var req contactRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return contactRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return contactRequest{}, false
	}
	return req, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrClientMissing):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "client not found")
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) record(r *http.Request, orgID int64, action string, entityID int64, meta map[string]any) {
	actorID, _ := shared.CurrentUserID(r.Context())
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:        actorID,
		OrganizationID: orgID,
		Action:         action,
		Entity:         "contact",
		EntityID:       strconv.FormatInt(entityID, 10),
		Meta:           meta,
	}); err != nil {
		h.logger.Warn("audit record failed", slog.Any("error", err))
	}
}

func orgIDParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	return id
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
