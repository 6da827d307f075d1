package orgs

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

// Handler manages organization endpoints.
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

// MountRoutes registers organization routes at /orgs.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listOrganizations)
	r.Post("/", h.createOrganization)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAccess())
		r.Get("/{orgID}", h.getOverview)
	})
}

type createOrgRequest struct {
	Name string `json:"name" validate:"required,min=2,max=200"`
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	orgs, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("list organizations failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if orgs == nil {
		orgs = []Organization{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"organizations": orgs})
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req createOrgRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	org, err := h.service.Create(r.Context(), req.Name, userID)
	if err != nil {
		if errors.Is(err, ErrSlugTaken) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "organization name already taken")
			return
		}
		h.logger.Error("create organization failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:        userID,
		OrganizationID: org.ID,
		Action:         "organization.create",
		Entity:         "organization",
		EntityID:       strconv.FormatInt(org.ID, 10),
		Meta:           map[string]any{"name": org.Name, "slug": org.Slug},
	}); err != nil {
		h.logger.Warn("audit record failed", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusCreated, org)
}

func (h *Handler) getOverview(w http.ResponseWriter, r *http.Request) {
	orgID, err := strconv.ParseInt(chi.URLParam(r, "orgID"), 10, 64)
	if err != nil || orgID <= 0 {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	overview, err := h.service.GetOverview(r.Context(), orgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("organization overview failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}
