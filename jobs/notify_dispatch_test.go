package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/notify"
)

type captureMailer struct {
	to      string
	subject string
	body    string
	sent    int
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return nil
}

func taskFor(t *testing.T, payload notify.Payload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	envelope, err := json.Marshal(notify.Envelope{Kind: payload.NotificationKind(), Data: data})
	require.NoError(t, err)
	return asynq.NewTask(notify.TaskTypeDispatch, envelope)
}

func TestDispatchLowStockGoesToAdmin(t *testing.T) {
	mailer := &captureMailer{}
	job := NewNotifyDispatchJob(mailer, "ops@sitetrack.local", slog.Default())

	err := job.Handle(context.Background(), taskFor(t, notify.LowStock{
		ProjectID:       1,
		ProjectName:     "Riverside Duplex",
		ProductName:     "Deformed Bar 12mm",
		CurrentQuantity: 4,
		ReorderPoint:    5,
		Unit:            "pc",
	}))
	require.NoError(t, err)
	require.Equal(t, "ops@sitetrack.local", mailer.to)
	require.Contains(t, mailer.subject, "Low stock")
	require.Contains(t, mailer.body, "Deformed Bar 12mm")
	require.Contains(t, mailer.body, "reorder point 5")
}

func TestDispatchOTPGoesToUser(t *testing.T) {
	mailer := &captureMailer{}
	job := NewNotifyDispatchJob(mailer, "ops@sitetrack.local", slog.Default())

	err := job.Handle(context.Background(), taskFor(t, notify.OTPIssued{
		Email:     "maria@example.com",
		Code:      "123456",
		ExpiresAt: time.Date(2026, 9, 1, 10, 5, 0, 0, time.UTC),
	}))
	require.NoError(t, err)
	require.Equal(t, "maria@example.com", mailer.to)
	require.Contains(t, mailer.body, "123456")
}

func TestDispatchProjectStatusGoesToOwner(t *testing.T) {
	mailer := &captureMailer{}
	job := NewNotifyDispatchJob(mailer, "ops@sitetrack.local", slog.Default())

	err := job.Handle(context.Background(), taskFor(t, notify.ProjectStatusChanged{
		ProjectName: "Riverside Duplex",
		OldStatus:   "pending",
		NewStatus:   "active",
		OwnerEmail:  "client@example.com",
	}))
	require.NoError(t, err)
	require.Equal(t, "client@example.com", mailer.to)
	require.Contains(t, mailer.subject, "active")
}

func TestDispatchMalformedEnvelopeSkipsRetry(t *testing.T) {
	mailer := &captureMailer{}
	job := NewNotifyDispatchJob(mailer, "ops@sitetrack.local", slog.Default())

	err := job.Handle(context.Background(), asynq.NewTask(notify.TaskTypeDispatch, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, mailer.sent)
}

func TestDispatchUnknownKindSkipsRetry(t *testing.T) {
	mailer := &captureMailer{}
	job := NewNotifyDispatchJob(mailer, "ops@sitetrack.local", slog.Default())

	envelope, err := json.Marshal(notify.Envelope{Kind: "inventory.unknown", Data: []byte(`{}`)})
	require.NoError(t, err)
	err = job.Handle(context.Background(), asynq.NewTask(notify.TaskTypeDispatch, envelope))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, mailer.sent)
}
