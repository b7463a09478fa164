package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the project inventory ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    authzMW,
	}
}

// MountRoutes registers ledger routes under /projects/{projectID}/inventory.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapInventoryView))
		r.Get("/", h.handleCurrentInventory)
		r.Get("/transactions", h.handleTransactions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapInventoryTransfer))
		r.Post("/transfers", h.handleRecordTransfer)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapInventoryExport))
		r.Get("/export", h.handleExport)
	})
}

type transferRequest struct {
	ProductID    int64    `json:"product_id" validate:"required,gt=0"`
	Action       string   `json:"action" validate:"required,oneof=checked_out returned adjusted"`
	Quantity     float64  `json:"quantity" validate:"required,gt=0"`
	Unit         string   `json:"unit" validate:"max=32"`
	Notes        string   `json:"notes" validate:"max=1000"`
	ReorderPoint *float64 `json:"reorder_point" validate:"omitempty,gte=0"`
}

func (h *Handler) handleRecordTransfer(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	subject, ok := authz.SubjectFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	var req transferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, validationFields(err))
		return
	}

	rec, err := h.service.RecordTransfer(r.Context(), TransferInput{
		ProjectID:    projectID,
		ProductID:    req.ProductID,
		Action:       Action(req.Action),
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Notes:        req.Notes,
		ReorderPoint: req.ReorderPoint,
		ActionBy: Actor{
			UserID: subject.UserID,
			Name:   subject.Name,
			Role:   subject.Role,
		},
	})
	if err != nil {
		h.respondTransferError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleCurrentInventory(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	snapshots, err := h.service.CurrentInventory(r.Context(), projectID)
	if err != nil {
		h.logger.Error("current inventory", slog.Int64("project_id", projectID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, snapshots)
}

func (h *Handler) handleTransactions(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	records, err := h.service.Transactions(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
			return
		}
		h.logger.Error("list transactions", slog.Int64("project_id", projectID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	projectID, ok := h.projectID(w, r)
	if !ok {
		return
	}
	kind := ExportKind(r.URL.Query().Get("kind"))
	if !kind.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "kind must be transactions, inventory or summary")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "format must be csv or xlsx")
		return
	}

	records, err := h.service.Transactions(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
			return
		}
		h.logger.Error("export fetch records", slog.Int64("project_id", projectID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	snapshots := Reconcile(records)

	filename := fmt.Sprintf("project-%d-%s-%s.%s", projectID, kind, time.Now().Format("20060102"), format)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if format == "xlsx" {
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = WriteXLSX(w, kind, records, snapshots)
	} else {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = WriteCSV(w, kind, records, snapshots)
	}
	if err != nil {
		h.logger.Error("export write", slog.String("kind", string(kind)), slog.Any("error", err))
	}
}

func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid project id")
		return 0, false
	}
	return id, true
}

// respondTransferError maps domain errors onto field-level problems so
// the UI can attach messages to the offending input.
func (h *Handler) respondTransferError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		httpx.FieldProblem(w, map[string]string{"quantity": "Quantity must be a positive number."})
	case errors.Is(err, ErrInvalidAction):
		httpx.FieldProblem(w, map[string]string{"action": "Unknown action."})
	case errors.Is(err, ErrInsufficientMainStock):
		httpx.FieldProblem(w, map[string]string{"quantity": "Not enough stock in the main warehouse."})
	case errors.Is(err, ErrInsufficientProjectStock):
		httpx.FieldProblem(w, map[string]string{"quantity": "The project does not hold that much of this product."})
	case errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrProjectNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
	case errors.Is(err, ErrProjectClosed):
		httpx.Problem(w, http.StatusConflict, "Conflict", "project is not active")
	case errors.Is(err, ErrPersistence):
		httpx.Problem(w, http.StatusServiceUnavailable, "Temporary Failure", "the transfer could not be saved, please retry")
	default:
		h.logger.Error("record transfer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func validationFields(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "invalid value"
		}
		return fields
	}
	fields["body"] = "invalid request"
	return fields
}
