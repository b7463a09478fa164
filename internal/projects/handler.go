package projects

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/platform/httpx"
)

// maxTimelineUpload bounds a single timeline post, photos included.
const maxTimelineUpload = 25 << 20

// Handler wires HTTP endpoints for project management.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	authz    authz.Middleware
}

// NewHandler constructs the projects handler.
func NewHandler(logger *slog.Logger, service *Service, authzMW authz.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		authz:    authzMW,
	}
}

// MountRoutes registers project routes under /projects.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapProjectsView))
		r.Get("/", h.handleList)
		r.Get("/{projectID}", h.handleGet)
		r.Get("/{projectID}/timeline", h.handleTimeline)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapProjectsEdit))
		r.Post("/", h.handleCreate)
		r.Put("/{projectID}", h.handleUpdate)
		r.Post("/{projectID}/timeline", h.handleAddTimelineEntry)
		r.Delete("/{projectID}/timeline/{entryID}", h.handleDeleteTimelineEntry)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.Require(authz.CapProjectsConfirm))
		r.Post("/{projectID}/confirm", h.handleTransition(h.service.Confirm))
		r.Post("/{projectID}/complete", h.handleTransition(h.service.Complete))
		r.Post("/{projectID}/cancel", h.handleTransition(h.service.Cancel))
	})
}

type projectRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	ClientName  string  `json:"client_name" validate:"max=200"`
	ClientEmail string  `json:"client_email" validate:"omitempty,email"`
	Location    string  `json:"location" validate:"max=300"`
	Description string  `json:"description" validate:"max=2000"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	project, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, err, "create project")
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	input, ok := h.decodeInput(w, r)
	if !ok {
		return
	}
	project, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err, "update project")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	project, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "get project")
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	list, err := h.service.List(r.Context(), status)
	if err != nil {
		h.respondError(w, err, "list projects")
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleTransition(fn func(ctx context.Context, id, actorID int64) (Project, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.projectID(w, r)
		if !ok {
			return
		}
		subject, ok := authz.SubjectFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		project, err := fn(r.Context(), id, subject.UserID)
		if err != nil {
			h.respondError(w, err, "project transition")
			return
		}
		httpx.JSON(w, http.StatusOK, project)
	}
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	entries, err := h.service.Timeline(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "project timeline")
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) handleAddTimelineEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	subject, ok := authz.SubjectFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if err := r.ParseMultipartForm(maxTimelineUpload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "expected multipart form")
		return
	}

	input := TimelineInput{
		Title:    r.FormValue("title"),
		Body:     r.FormValue("body"),
		PostedBy: subject.UserID,
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["photos"] {
			file, err := header.Open()
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unreadable photo upload")
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unreadable photo upload")
				return
			}
			input.Photos = append(input.Photos, Photo{Name: header.Filename, Data: data})
		}
	}

	entry, err := h.service.AddTimelineEntry(r.Context(), id, input)
	if err != nil {
		h.respondError(w, err, "add timeline entry")
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleDeleteTimelineEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}
	entryID, err := strconv.ParseInt(chi.URLParam(r, "entryID"), 10, 64)
	if err != nil || entryID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid entry id")
		return
	}
	if err := h.service.DeleteTimelineEntry(r.Context(), id, entryID); err != nil {
		h.respondError(w, err, "delete timeline entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (ProjectInput, bool) {
	var req projectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return ProjectInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.FieldProblem(w, map[string]string{"body": "invalid request"})
		return ProjectInput{}, false
	}
	input := ProjectInput{
		Name:        req.Name,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Location:    req.Location,
		Description: req.Description,
	}
	var ok bool
	if input.StartDate, ok = parseDate(w, "start_date", req.StartDate); !ok {
		return ProjectInput{}, false
	}
	if input.EndDate, ok = parseDate(w, "end_date", req.EndDate); !ok {
		return ProjectInput{}, false
	}
	return input, true
}

func parseDate(w http.ResponseWriter, field string, value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		httpx.FieldProblem(w, map[string]string{field: "Use YYYY-MM-DD."})
		return nil, false
	}
	return &t, true
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
	case errors.Is(err, ErrProjectNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "project not found")
	case errors.Is(err, ErrEntryNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "timeline entry not found")
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", "the project cannot move to that status")
	case errors.Is(err, ErrInvalidProject):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
