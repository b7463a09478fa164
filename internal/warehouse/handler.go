package warehouse

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for main warehouse stock.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the warehouse handler.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    authzMW,
	}
}

// MountRoutes registers warehouse routes under /warehouse.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapWarehouseView))
		r.Get("/stock", h.handleList)
		r.Get("/stock/{productID}", h.handleAvailable)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapWarehouseEdit))
		r.Put("/stock/{productID}", h.handleSetStock)
		r.Post("/stock/{productID}/adjust", h.handleAdjust)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err, "list warehouse stock")
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) handleAvailable(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	qty, err := h.service.Available(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "warehouse availability")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": id, "quantity": qty})
}

type setStockRequest struct {
	Quantity     float64  `json:"quantity" validate:"gte=0"`
	ReorderPoint *float64 `json:"reorder_point" validate:"omitempty,gte=0"`
}

func (h *Handler) handleSetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req setStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, map[string]string{"body": "invalid request"})
		return
	}
	if err := h.service.SetStock(r.Context(), Item{
		ProductID:    id,
		Quantity:     req.Quantity,
		ReorderPoint: req.ReorderPoint,
	}); err != nil {
		h.respondError(w, err, "set warehouse stock")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Delta float64 `json:"delta" validate:"required"`
}

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, map[string]string{"delta": "Delta must be a non-zero number."})
		return
	}
	if err := h.service.AdjustQuantity(r.Context(), id, req.Delta); err != nil {
		h.respondError(w, err, "adjust warehouse stock")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no stock record for this product")
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Conflict", "the adjustment would leave stock negative")
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "quantity must not be negative")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
