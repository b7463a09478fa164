package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/platform/httpx"
	"github.com/sitetrack/sitetrack/internal/projects"
)

// Handler wires HTTP endpoints for payment records.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the payments handler.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    authzMW,
	}
}

// MountRoutes registers payment routes under /projects/{projectID}/payments.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapPaymentsView))
		r.Get("/", h.handleProjectSummary)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapPaymentsEdit))
		r.Post("/", h.handleRecord)
	})
}

type paymentRequest struct {
	Amount    string `json:"amount" validate:"required"`
	Method    string `json:"method" validate:"required,oneof=cash check bank_transfer gcash"`
	Reference string `json:"reference" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=1000"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	subject, ok := authz.SubjectFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req paymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, map[string]string{"body": "invalid request"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.FieldProblem(w, map[string]string{"amount": "Amount must be a decimal number."})
		return
	}

	payment, err := h.service.Record(r.Context(), PaymentInput{
		ProjectID:  projectID,
		Amount:     amount,
		Method:     Method(req.Method),
		Reference:  req.Reference,
		Notes:      req.Notes,
		RecordedBy: subject.UserID,
	})
	if err != nil {
		h.respondError(w, err, "record payment")
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.ProjectSummary(r.Context(), projectID)
	if err != nil {
		h.respondError(w, err, "project payments")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "payment not found")
	case errors.Is(err, projects.ErrProjectNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
	case errors.Is(err, ErrInvalidPayment):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
