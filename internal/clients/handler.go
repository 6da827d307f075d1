package clients

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

// Handler manages client endpoints under /orgs/{orgID}/clients.
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

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermClientsRead))
		r.Get("/", h.list)
		r.Get("/{clientID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermClientsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermClientsUpdate))
		r.Put("/{clientID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermClientsDelete))
		r.Delete("/{clientID}", h.delete)
	})
}

type clientRequest struct {
	Code     string `json:"code" validate:"required,max=32"`
	Name     string `json:"name" validate:"required,max=200"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=500"`
	IsActive *bool  `json:"is_active"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	page, perPage := shared.PageParams(r, 100)
	items, total, err := h.service.List(r.Context(), orgID, ListFilters{
		Search:  r.URL.Query().Get("q"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		h.logger.Error("list clients failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if items == nil {
		items = []Client{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"clients":    items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r, "clientID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	client, err := h.service.Get(r.Context(), orgID, id)
	if err != nil {
		h.respondErr(w, err, "get client")
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	client := req.toClient(orgID, 0)
	created, err := h.service.Create(r.Context(), client)
	if err != nil {
		h.respondErr(w, err, "create client")
		return
	}
	h.record(r, orgID, "client.create", created.ID, map[string]any{"code": created.Code})
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r, "clientID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	client := req.toClient(orgID, id)
	if err := h.service.Update(r.Context(), client); err != nil {
		h.respondErr(w, err, "update client")
		return
	}
	h.record(r, orgID, "client.update", id, map[string]any{"code": client.Code})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r, "clientID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	if err := h.service.Delete(r.Context(), orgID, id); err != nil {
		h.respondErr(w, err, "delete client")
		return
	}
	h.record(r, orgID, "client.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (clientRequest, bool) {
	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return clientRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return clientRequest{}, false
	}
	return req, true
}

func (req clientRequest) toClient(orgID, id int64) Client {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Client{
		ID:             id,
		OrganizationID: orgID,
		Code:           req.Code,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		IsActive:       active,
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrCodeTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "client code already in use")
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
		Entity:         "client",
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

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
