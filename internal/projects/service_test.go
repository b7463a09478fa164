package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/notify"
)

type fakeStore struct {
	projects  map[int64]Project
	nextID    int64
	entries   []TimelineEntry
	nextEntry int64
	failAdd   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{projects: map[int64]Project{}}
}

func (s *fakeStore) Create(ctx context.Context, input ProjectInput) (Project, error) {
	s.nextID++
	p := Project{
		ID:          s.nextID,
		Name:        input.Name,
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		Location:    input.Location,
		Description: input.Description,
		Status:      StatusPending,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedAt:   time.Now(),
	}
	s.projects[p.ID] = p
	return p, nil
}

func (s *fakeStore) Update(ctx context.Context, id int64, input ProjectInput) (Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	p.Name = input.Name
	s.projects[id] = p
	return p, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id int64, from, to Status) (Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	if p.Status != from {
		return Project{}, ErrInvalidTransition
	}
	p.Status = to
	s.projects[id] = p
	return p, nil
}

func (s *fakeStore) Get(ctx context.Context, id int64) (Project, error) {
	p, ok := s.projects[id]
	if !ok {
		return Project{}, ErrProjectNotFound
	}
	return p, nil
}

func (s *fakeStore) List(ctx context.Context, status Status) ([]Project, error) {
	var out []Project
	for _, p := range s.projects {
		if status == "" || p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) AddTimelineEntry(ctx context.Context, projectID int64, title, body string, photoURLs []string, postedBy int64) (TimelineEntry, error) {
	if s.failAdd {
		return TimelineEntry{}, errors.New("connection reset")
	}
	s.nextEntry++
	e := TimelineEntry{
		ID: s.nextEntry, ProjectID: projectID, Title: title, Body: body,
		PhotoURLs: photoURLs, PostedBy: postedBy, CreatedAt: time.Now(),
	}
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *fakeStore) Timeline(ctx context.Context, projectID int64) ([]TimelineEntry, error) {
	var out []TimelineEntry
	for _, e := range s.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) DeleteTimelineEntry(ctx context.Context, projectID, entryID int64) ([]string, error) {
	for i, e := range s.entries {
		if e.ID == entryID && e.ProjectID == projectID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return e.PhotoURLs, nil
		}
	}
	return nil, ErrEntryNotFound
}

type fakeStorage struct {
	uploads  int
	deleted  []string
	failFrom int
}

func (s *fakeStorage) Upload(ctx context.Context, name string, data []byte) (string, error) {
	s.uploads++
	if s.failFrom > 0 && s.uploads >= s.failFrom {
		return "", errors.New("storage unavailable")
	}
	return fmt.Sprintf("/uploads/%d-%s", s.uploads, name), nil
}

func (s *fakeStorage) Delete(ctx context.Context, urls []string) error {
	s.deleted = append(s.deleted, urls...)
	return nil
}

type recordingNotifier struct {
	payloads []notify.Payload
}

func (n *recordingNotifier) Dispatch(ctx context.Context, payload notify.Payload) {
	n.payloads = append(n.payloads, payload)
}

func newService(store *fakeStore, storage *fakeStorage, notifier *recordingNotifier) *Service {
	return NewService(store, storage, notifier, nil, slog.Default())
}

func TestLifecyclePendingToCompleted(t *testing.T) {
	store := newFakeStore()
	notifier := &recordingNotifier{}
	svc := newService(store, &fakeStorage{}, notifier)
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex", ClientEmail: "client@example.com"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, p.Status)

	p, err = svc.Confirm(ctx, p.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusActive, p.Status)

	p, err = svc.Complete(ctx, p.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, p.Status)

	require.Len(t, notifier.payloads, 2)
	change, ok := notifier.payloads[1].(notify.ProjectStatusChanged)
	require.True(t, ok)
	require.Equal(t, "active", change.OldStatus)
	require.Equal(t, "completed", change.NewStatus)
	require.Equal(t, "client@example.com", change.OwnerEmail)
}

func TestConfirmTwiceRejected(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeStorage{}, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Warehouse Annex"})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, p.ID, 1)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, p.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCompleteFromPendingRejected(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeStorage{}, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Warehouse Annex"})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, p.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelFromPendingAndActive(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeStorage{}, &recordingNotifier{})
	ctx := context.Background()

	pending, err := svc.Create(ctx, ProjectInput{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, pending.ID, 1)
	require.NoError(t, err)

	active, err := svc.Create(ctx, ProjectInput{Name: "B"})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, active.ID, 1)
	require.NoError(t, err)
	cancelled, err := svc.Cancel(ctx, active.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, cancelled.ID, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(newFakeStore(), &fakeStorage{}, &recordingNotifier{})
	ctx := context.Background()

	_, err := svc.Create(ctx, ProjectInput{Name: "  "})
	require.ErrorIs(t, err, ErrInvalidProject)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)
	_, err = svc.Create(ctx, ProjectInput{Name: "X", StartDate: &start, EndDate: &end})
	require.ErrorIs(t, err, ErrInvalidProject)
}

func TestTimelineEntryUploadsPhotos(t *testing.T) {
	store := newFakeStore()
	storage := &fakeStorage{}
	svc := newService(store, storage, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex"})
	require.NoError(t, err)

	entry, err := svc.AddTimelineEntry(ctx, p.ID, TimelineInput{
		Title:    "Footings poured",
		Photos:   []Photo{{Name: "a.jpg", Data: []byte("x")}, {Name: "b.jpg", Data: []byte("y")}},
		PostedBy: 7,
	})
	require.NoError(t, err)
	require.Len(t, entry.PhotoURLs, 2)
	require.Empty(t, storage.deleted)
}

func TestTimelineEntryCleansUpAfterFailedUpload(t *testing.T) {
	store := newFakeStore()
	storage := &fakeStorage{failFrom: 2}
	svc := newService(store, storage, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex"})
	require.NoError(t, err)

	_, err = svc.AddTimelineEntry(ctx, p.ID, TimelineInput{
		Title:  "Footings poured",
		Photos: []Photo{{Name: "a.jpg"}, {Name: "b.jpg"}},
	})
	require.Error(t, err)
	require.Len(t, storage.deleted, 1)
	require.Empty(t, store.entries)
}

func TestTimelineEntryCleansUpAfterFailedInsert(t *testing.T) {
	store := newFakeStore()
	store.failAdd = true
	storage := &fakeStorage{}
	svc := newService(store, storage, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex"})
	require.NoError(t, err)

	_, err = svc.AddTimelineEntry(ctx, p.ID, TimelineInput{
		Title:  "Footings poured",
		Photos: []Photo{{Name: "a.jpg"}},
	})
	require.Error(t, err)
	require.Len(t, storage.deleted, 1)
}

func TestDeleteTimelineEntryRemovesPhotos(t *testing.T) {
	store := newFakeStore()
	storage := &fakeStorage{}
	svc := newService(store, storage, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex"})
	require.NoError(t, err)
	entry, err := svc.AddTimelineEntry(ctx, p.ID, TimelineInput{
		Title:  "Roof framing",
		Photos: []Photo{{Name: "roof.jpg", Data: []byte("z")}},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTimelineEntry(ctx, p.ID, entry.ID))
	require.Equal(t, entry.PhotoURLs, storage.deleted)

	err = svc.DeleteTimelineEntry(ctx, p.ID, entry.ID)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestGetProjectInfoMapsStatus(t *testing.T) {
	store := newFakeStore()
	svc := newService(store, &fakeStorage{}, &recordingNotifier{})
	ctx := context.Background()

	p, err := svc.Create(ctx, ProjectInput{Name: "Riverside Duplex", ClientEmail: "client@example.com"})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, p.ID, 1)
	require.NoError(t, err)

	info, err := svc.GetProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "active", info.Status)
	require.Equal(t, "client@example.com", info.OwnerEmail)
}
