package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/sitetrack/sitetrack/internal/ledger"
	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
)

// Store abstracts persistence for Service.
type Store interface {
	Create(ctx context.Context, input ProjectInput) (Project, error)
	Update(ctx context.Context, id int64, input ProjectInput) (Project, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) (Project, error)
	Get(ctx context.Context, id int64) (Project, error)
	List(ctx context.Context, status Status) ([]Project, error)
	AddTimelineEntry(ctx context.Context, projectID int64, title, body string, photoURLs []string, postedBy int64) (TimelineEntry, error)
	Timeline(ctx context.Context, projectID int64) ([]TimelineEntry, error)
	DeleteTimelineEntry(ctx context.Context, projectID, entryID int64) ([]string, error)
}

// ObjectStorage uploads and deletes timeline photos.
type ObjectStorage interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, urls []string) error
}

// AuditPort records mutating operations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates project lifecycle and timeline updates.
type Service struct {
	store    Store
	storage  ObjectStorage
	notifier notify.Dispatcher
	audit    AuditPort
	logger   *slog.Logger
}

// NewService constructs Service.
func NewService(store Store, storage ObjectStorage, notifier notify.Dispatcher, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{
		store:    store,
		storage:  storage,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// Create registers a new project in the pending state.
func (s *Service) Create(ctx context.Context, input ProjectInput) (Project, error) {
	if err := validateInput(&input); err != nil {
		return Project{}, err
	}
	return s.store.Create(ctx, input)
}

// Update rewrites a project's descriptive fields.
func (s *Service) Update(ctx context.Context, id int64, input ProjectInput) (Project, error) {
	if err := validateInput(&input); err != nil {
		return Project{}, err
	}
	return s.store.Update(ctx, id, input)
}

// Get returns one project.
func (s *Service) Get(ctx context.Context, id int64) (Project, error) {
	return s.store.Get(ctx, id)
}

// List returns projects, optionally filtered by status.
func (s *Service) List(ctx context.Context, status Status) ([]Project, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidProject, status)
	}
	return s.store.List(ctx, status)
}

// Confirm moves a pending project to active.
func (s *Service) Confirm(ctx context.Context, id int64, actorID int64) (Project, error) {
	return s.transition(ctx, id, StatusPending, StatusActive, actorID)
}

// Complete closes an active project.
func (s *Service) Complete(ctx context.Context, id int64, actorID int64) (Project, error) {
	return s.transition(ctx, id, StatusActive, StatusCompleted, actorID)
}

// Cancel abandons a pending or active project.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) (Project, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Project{}, err
	}
	if !CanTransition(current.Status, StatusCancelled) {
		return Project{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, StatusCancelled)
	}
	return s.transition(ctx, id, current.Status, StatusCancelled, actorID)
}

func (s *Service) transition(ctx context.Context, id int64, from, to Status, actorID int64) (Project, error) {
	project, err := s.store.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return Project{}, err
	}

	if s.audit != nil {
		if auditErr := s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "project." + string(to),
			Entity:   "project",
			EntityID: strconv.FormatInt(id, 10),
			Meta:     map[string]any{"from": string(from), "to": string(to)},
		}); auditErr != nil {
			s.logger.Warn("audit project transition", slog.Int64("project_id", id), slog.Any("error", auditErr))
		}
	}

	s.notifier.Dispatch(ctx, notify.ProjectStatusChanged{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		OldStatus:   string(from),
		NewStatus:   string(to),
		OwnerEmail:  project.ClientEmail,
	})
	return project, nil
}

// AddTimelineEntry uploads the photos then persists the entry. Uploads
// that succeeded before a later failure are deleted best-effort.
func (s *Service) AddTimelineEntry(ctx context.Context, projectID int64, input TimelineInput) (TimelineEntry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return TimelineEntry{}, fmt.Errorf("%w: title required", ErrInvalidProject)
	}
	if _, err := s.store.Get(ctx, projectID); err != nil {
		return TimelineEntry{}, err
	}

	urls := make([]string, 0, len(input.Photos))
	for _, photo := range input.Photos {
		url, err := s.storage.Upload(ctx, photo.Name, photo.Data)
		if err != nil {
			s.cleanupPhotos(ctx, urls)
			return TimelineEntry{}, fmt.Errorf("upload photo %s: %w", photo.Name, err)
		}
		urls = append(urls, url)
	}

	entry, err := s.store.AddTimelineEntry(ctx, projectID, input.Title, input.Body, urls, input.PostedBy)
	if err != nil {
		s.cleanupPhotos(ctx, urls)
		return TimelineEntry{}, err
	}
	return entry, nil
}

// Timeline returns a project's progress updates.
func (s *Service) Timeline(ctx context.Context, projectID int64) ([]TimelineEntry, error) {
	if _, err := s.store.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.Timeline(ctx, projectID)
}

// DeleteTimelineEntry removes an entry. Photo deletion from storage is
// best-effort: the database row is already gone, an orphaned object is
// acceptable, a dangling reference is not.
func (s *Service) DeleteTimelineEntry(ctx context.Context, projectID, entryID int64) error {
	urls, err := s.store.DeleteTimelineEntry(ctx, projectID, entryID)
	if err != nil {
		return err
	}
	s.cleanupPhotos(ctx, urls)
	return nil
}

func (s *Service) cleanupPhotos(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := s.storage.Delete(ctx, urls); err != nil {
		s.logger.Warn("delete timeline photos", slog.Int("count", len(urls)), slog.Any("error", err))
	}
}

// GetProject implements the ledger project port.
func (s *Service) GetProject(ctx context.Context, projectID int64) (ledger.ProjectInfo, error) {
	project, err := s.store.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			return ledger.ProjectInfo{}, shared.ErrNotFound
		}
		return ledger.ProjectInfo{}, err
	}
	return ledger.ProjectInfo{
		ID:         project.ID,
		Name:       project.Name,
		Status:     string(project.Status),
		OwnerEmail: project.ClientEmail,
	}, nil
}

func validateInput(input *ProjectInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.ClientEmail = strings.TrimSpace(input.ClientEmail)
	input.Location = strings.TrimSpace(input.Location)
	if input.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProject)
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidProject)
	}
	return nil
}
