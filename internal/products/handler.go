package products

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

// Handler manages product endpoints under /orgs/{orgID}/products.
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

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermProductsRead))
		r.Get("/", h.list)
		r.Get("/{productID}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermProductsCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermProductsUpdate))
		r.Put("/{productID}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(authz.PermProductsDelete))
		r.Delete("/{productID}", h.delete)
	})
}

type productRequest struct {
	SKU        string `json:"sku" validate:"required,max=64"`
	Name       string `json:"name" validate:"required,max=200"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	IsActive   *bool  `json:"is_active"`
}

type productResponse struct {
	Product
	DisplayPrice string `json:"display_price"`
}

func toResponse(p Product) productResponse {
	return productResponse{Product: p, DisplayPrice: p.DisplayPrice()}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	page, perPage := shared.PageParams(r, 100)
	items, total, err := h.service.List(r.Context(), orgID, ListFilters{
		Search:     r.URL.Query().Get("q"),
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Page:       page,
		PerPage:    perPage,
	})
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]productResponse, 0, len(items))
	for _, p := range items {
		out = append(out, toResponse(p))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   out,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	product, err := h.service.Get(r.Context(), orgIDParam(r), id)
	if err != nil {
		h.respondErr(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(product))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), req.toProduct(orgID, 0))
	if err != nil {
		h.respondErr(w, err, "create product")
		return
	}
	h.record(r, orgID, "product.create", created.ID, map[string]any{"sku": created.SKU})
	httpx.JSON(w, http.StatusCreated, toResponse(created))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	product := req.toProduct(orgID, id)
	if err := h.service.Update(r.Context(), product); err != nil {
		h.respondErr(w, err, "update product")
		return
	}
	h.record(r, orgID, "product.update", id, map[string]any{"sku": product.SKU})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	orgID := orgIDParam(r)
	id, ok := idParam(r, "productID")
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
		return
	}
	if err := h.service.Delete(r.Context(), orgID, id); err != nil {
		h.respondErr(w, err, "delete product")
		return
	}
	h.record(r, orgID, "product.delete", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (productRequest, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return productRequest{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return productRequest{}, false
	}
	return req, true
}

func (req productRequest) toProduct(orgID, id int64) Product {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Product{
		ID:             id,
		OrganizationID: orgID,
		SKU:            req.SKU,
		Name:           req.Name,
		PriceCents:     req.PriceCents,
		IsActive:       active,
	}
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrSKUTaken):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "product sku already in use")
	case errors.Is(err, ErrInvalidPrice):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "price must not be negative")
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
		Entity:         "product",
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
