package catalog

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the product catalog.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    authzMW,
	}
}

// MountRoutes registers catalog routes under /catalog.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapCatalogView))
		r.Get("/products", h.handleList)
		r.Get("/products/{productID}", h.handleGet)
		r.Get("/categories", h.handleCategories)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapCatalogEdit))
		r.Post("/products", h.handleCreate)
		r.Put("/products/{productID}", h.handleUpdate)
	})
}

type productRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Category  string `json:"category" validate:"max=100"`
	Unit      string `json:"unit" validate:"required,max=32"`
	Supplier  string `json:"supplier" validate:"max=200"`
	SalePrice string `json:"sale_price" validate:"required"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err, "create product")
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err, "update product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get product")
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	products, err := h.service.List(r.Context(), category)
	if err != nil {
		h.respondError(w, err, "list products")
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.respondError(w, err, "list categories")
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (ProductInput, bool) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return ProductInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, map[string]string{"body": "invalid request"})
		return ProductInput{}, false
	}
	price, err := decimal.NewFromString(req.SalePrice)
	if err != nil {
		httpx.FieldProblem(w, map[string]string{"sale_price": "Sale price must be a decimal number."})
		return ProductInput{}, false
	}
	return ProductInput{
		Name:      req.Name,
		Category:  req.Category,
		Unit:      req.Unit,
		Supplier:  req.Supplier,
		SalePrice: price,
	}, true
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
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrDuplicateName):
		httpx.FieldProblem(w, map[string]string{"name": "A product with this name already exists."})
	case errors.Is(err, ErrInvalidProduct):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
