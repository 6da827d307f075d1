package invitations

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

// Handler manages invitation endpoints. Organization-scoped routes live
// under /orgs/{orgID}/invitations; accepting is a top-level route because
// the accepting user is not yet a member.
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

// MountRoutes registers organization-scoped invitation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermInvitationsRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermInvitationsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermInvitationsRevoke))
		r.Delete("/{invitationID}", h.revoke)
	})
}

// MountAcceptRoute registers the unscoped accept endpoint.
func (h *Handler) MountAcceptRoute(r chi.Router) {
	r.Post("/accept", h.accept)
}

type createInvitationRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type acceptInvitationRequest struct {
	Token string `json:"token" validate:"required,uuid4"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	invitations, err := h.service.List(r.Context(), orgIDParam(r))
	if err != nil {
		h.logger.Error("list invitations failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if invitations == nil {
		invitations = []Invitation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invitations": invitations})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	actorID, _ := shared.CurrentUserID(r.Context())
	var req createInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.Create(r.Context(), orgID, actorID, req.Email, req.Role)
	if err != nil {
		if errors.Is(err, ErrUnknownRole) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		h.logger.Error("create invitation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.record(r, orgID, "invitation.create", created.ID, map[string]any{"email": created.Email, "role": created.Role})
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "invitationID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	if err := h.service.Revoke(r.Context(), orgID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("revoke invitation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.record(r, orgID, "invitation.revoke", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req acceptInvitationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	inv, err := h.service.Accept(r.Context(), req.Token, userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invalid invitation token")
		case errors.Is(err, ErrExpired):
			httpx.Problem(w, http.StatusGone, "Expired", "invitation expired")
		default:
			h.logger.Error("accept invitation failed", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	h.record(r, inv.OrganizationID, "invitation.accept", inv.ID, map[string]any{"role": inv.Role})
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) record(r *http.Request, orgID int64, action string, entityID int64, meta map[string]any) {
	actorID, _ := shared.CurrentUserID(r.Context())
	if err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:        actorID,
		OrganizationID: orgID,
		Action:         action,
		Entity:         "invitation",
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
