// Package projects tracks construction projects, their lifecycle and
// their photo timeline. The inventory ledger and payment records hang
// off a project id issued here.
package projects

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a project.
type Status string

const (
	// StatusPending is the initial state after creation.
	StatusPending Status = "pending"
	// StatusActive means the project was confirmed and may receive
	// inventory transfers and payments.
	StatusActive Status = "active"
	// StatusCompleted is a terminal state for finished projects.
	StatusCompleted Status = "completed"
	// StatusCancelled is a terminal state for abandoned projects.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Project is one construction engagement.
type Project struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ClientName  string     `json:"client_name"`
	ClientEmail string     `json:"client_email"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ProjectInput carries create/update fields.
type ProjectInput struct {
	Name        string
	ClientName  string
	ClientEmail string
	Location    string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
}

// TimelineEntry is one progress update with optional photos.
type TimelineEntry struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	PhotoURLs []string  `json:"photo_urls"`
	PostedBy  int64     `json:"posted_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TimelineInput carries the fields for a new timeline entry.
type TimelineInput struct {
	Title    string
	Body     string
	Photos   []Photo
	PostedBy int64
}

// Photo is an uploaded image destined for object storage.
type Photo struct {
	Name string
	Data []byte
}

var (
	// ErrProjectNotFound indicates an unknown project id.
	ErrProjectNotFound = errors.New("projects: project not found")
	// ErrEntryNotFound indicates an unknown timeline entry.
	ErrEntryNotFound = errors.New("projects: timeline entry not found")
	// ErrInvalidProject indicates missing or malformed fields.
	ErrInvalidProject = errors.New("projects: invalid project")
	// ErrInvalidTransition indicates a lifecycle move the state machine
	// does not allow, like confirming a cancelled project.
	ErrInvalidTransition = errors.New("projects: invalid status transition")
)

// allowedTransitions encodes the lifecycle state machine.
var allowedTransitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
