package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
)

// Store abstracts persistence for Service.
type Store interface {
	Create(ctx context.Context, input PaymentInput) (Payment, error)
	Get(ctx context.Context, id int64) (Payment, error)
	ListByProject(ctx context.Context, projectID int64) ([]Payment, error)
	TotalByProject(ctx context.Context, projectID int64) (decimal.Decimal, error)
}

// ProjectInfo is the project context attached to notifications.
type ProjectInfo struct {
	ID   int64
	Name string
}

// ProjectPort resolves a project id to its display context.
type ProjectPort interface {
	GetProjectInfo(ctx context.Context, projectID int64) (ProjectInfo, error)
}

// AuditPort records mutating operations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ProjectSummary pairs a payment list with its running total.
type ProjectSummary struct {
	Payments []Payment       `json:"payments"`
	Total    decimal.Decimal `json:"total"`
}

// Service coordinates payment recording.
type Service struct {
	store    Store
	projects ProjectPort
	notifier notify.Dispatcher
	audit    AuditPort
	logger   *slog.Logger
}

// NewService constructs Service.
func NewService(store Store, projects ProjectPort, notifier notify.Dispatcher, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		projects: projects,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// Record validates and persists a payment, then notifies.
func (s *Service) Record(ctx context.Context, input PaymentInput) (Payment, error) {
	input.Reference = strings.TrimSpace(input.Reference)
	if !input.Amount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}
	if !input.Method.Valid() {
		return Payment{}, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, input.Method)
	}

	project, err := s.projects.GetProjectInfo(ctx, input.ProjectID)
	if err != nil {
		return Payment{}, err
	}

	payment, err := s.store.Create(ctx, input)
	if err != nil {
		return Payment{}, err
	}

	if s.audit != nil {
		if auditErr := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.RecordedBy,
			Action:   "payment.recorded",
			Entity:   "payment",
			EntityID: strconv.FormatInt(payment.ID, 10),
			Meta: map[string]any{
				"project_id": payment.ProjectID,
				"amount":     payment.Amount.String(),
				"method":     string(payment.Method),
			},
		}); auditErr != nil {
			s.logger.Warn("audit payment", slog.Int64("payment_id", payment.ID), slog.Any("error", auditErr))
		}
	}

	s.notifier.Dispatch(ctx, notify.PaymentRecorded{
		ProjectID:   payment.ProjectID,
		ProjectName: project.Name,
		Amount:      shared.FormatPeso(payment.Amount),
		Method:      string(payment.Method),
		Reference:   payment.Reference,
	})
	return payment, nil
}

// Get returns one payment.
func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	return s.store.Get(ctx, id)
}

// ProjectSummary lists a project's payments with the running total.
func (s *Service) ProjectSummary(ctx context.Context, projectID int64) (ProjectSummary, error) {
	if _, err := s.projects.GetProjectInfo(ctx, projectID); err != nil {
		return ProjectSummary{}, err
	}
	list, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return ProjectSummary{}, err
	}
	total, err := s.store.TotalByProject(ctx, projectID)
	if err != nil {
		return ProjectSummary{}, err
	}
	return ProjectSummary{Payments: list, Total: total}, nil
}
