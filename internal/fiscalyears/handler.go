package fiscalyears

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-hq/meridian/internal/authz"
	"github.com/meridian-hq/meridian/internal/platform/httpx"
	"github.com/meridian-hq/meridian/internal/shared"
)

// Handler manages fiscal year endpoints under /orgs/{orgID}/fiscal-years.
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

// MountRoutes registers fiscal year routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermFiscalYearsRead))
		r.Get("/", h.list)
		r.Get("/{fiscalYearID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermFiscalYearsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermFiscalYearsUpdate))
		r.Put("/{fiscalYearID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermFiscalYearsClose))
		r.Post("/{fiscalYearID}/close", h.close)
	})
}

type fiscalYearRequest struct {
	Label     string `json:"label" validate:"required,max=64"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.List(r.Context(), orgIDParam(r))
	if err != nil {
		h.logger.Error("list fiscal years failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if years == nil {
		years = []FiscalYear{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"fiscal_years": years})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	fy, err := h.service.Get(r.Context(), orgIDParam(r), id)
	if err != nil {
		h.respondErr(w, err, "get fiscal year")
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	fy, ok := h.decode(w, r, orgID, 0)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), fy)
	if err != nil {
		h.respondErr(w, err, "create fiscal year")
		return
	}
	h.record(r, orgID, "fiscal_year.create", created.ID, map[string]any{"label": created.Label})
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	fy, ok := h.decode(w, r, orgID, id)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), fy); err != nil {
		h.respondErr(w, err, "update fiscal year")
		return
	}
	h.record(r, orgID, "fiscal_year.update", id, map[string]any{"label": fy.Label})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	if err := h.service.Close(r.Context(), orgID, id); err != nil {
		h.respondErr(w, err, "close fiscal year")
		return
	}
	h.record(r, orgID, "fiscal_year.close", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, orgID, id int64) (FiscalYear, bool) {
	var req fiscalYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return FiscalYear{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return FiscalYear{}, false
	}
	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)
	return FiscalYear{
		ID:             id,
		OrganizationID: orgID,
		Label:          req.Label,
		StartDate:      start,
		EndDate:        end,
	}, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrInvalidRange):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "end date must be after start date")
	case errors.Is(err, ErrOverlap):
		httpx.Problem(w, http.StatusConflict, "Conflict", "date range overlaps an existing fiscal year")
	case errors.Is(err, ErrClosed):
		httpx.Problem(w, http.StatusConflict, "Conflict", "fiscal year is closed")
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
		Entity:         "fiscal_year",
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

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "fiscalYearID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
