package payments

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/projects"
)

type fakeStore struct {
	payments []Payment
	nextID   int64
}

func (s *fakeStore) Create(ctx context.Context, input PaymentInput) (Payment, error) {
	s.nextID++
	p := Payment{
		ID:         s.nextID,
		ProjectID:  input.ProjectID,
		Amount:     input.Amount,
		Method:     input.Method,
		Reference:  input.Reference,
		Notes:      input.Notes,
		RecordedBy: input.RecordedBy,
		CreatedAt:  time.Now(),
	}
	s.payments = append(s.payments, p)
	return p, nil
}

func (s *fakeStore) Get(ctx context.Context, id int64) (Payment, error) {
	for _, p := range s.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

func (s *fakeStore) ListByProject(ctx context.Context, projectID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range s.payments {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) TotalByProject(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range s.payments {
		if p.ProjectID == projectID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

type fakeProjects struct{}

func (fakeProjects) GetProjectInfo(ctx context.Context, projectID int64) (ProjectInfo, error) {
	if projectID != 1 {
		return ProjectInfo{}, projects.ErrProjectNotFound
	}
	return ProjectInfo{ID: 1, Name: "Riverside Duplex"}, nil
}

type recordingNotifier struct {
	payloads []notify.Payload
}

func (n *recordingNotifier) Dispatch(ctx context.Context, payload notify.Payload) {
	n.payloads = append(n.payloads, payload)
}

func TestRecordPaymentNotifies(t *testing.T) {
	store := &fakeStore{}
	notifier := &recordingNotifier{}
	svc := NewService(store, fakeProjects{}, notifier, nil, slog.Default())

	payment, err := svc.Record(context.Background(), PaymentInput{
		ProjectID:  1,
		Amount:     decimal.NewFromInt(150000),
		Method:     MethodTransfer,
		Reference:  "INV-0042",
		RecordedBy: 3,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), payment.ID)

	require.Len(t, notifier.payloads, 1)
	recorded, ok := notifier.payloads[0].(notify.PaymentRecorded)
	require.True(t, ok)
	require.Equal(t, "Riverside Duplex", recorded.ProjectName)
	require.Equal(t, "₱150,000.00", recorded.Amount)
	require.Equal(t, "INV-0042", recorded.Reference)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := NewService(&fakeStore{}, fakeProjects{}, &recordingNotifier{}, nil, slog.Default())
	ctx := context.Background()

	_, err := svc.Record(ctx, PaymentInput{ProjectID: 1, Amount: decimal.Zero, Method: MethodCash})
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Record(ctx, PaymentInput{ProjectID: 1, Amount: decimal.NewFromInt(-5), Method: MethodCash})
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Record(ctx, PaymentInput{ProjectID: 1, Amount: decimal.NewFromInt(5), Method: "crypto"})
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Record(ctx, PaymentInput{ProjectID: 99, Amount: decimal.NewFromInt(5), Method: MethodCash})
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
}

func TestProjectSummaryTotals(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, fakeProjects{}, &recordingNotifier{}, nil, slog.Default())
	ctx := context.Background()

	for _, amount := range []int64{50000, 25000, 12500} {
		_, err := svc.Record(ctx, PaymentInput{ProjectID: 1, Amount: decimal.NewFromInt(amount), Method: MethodCash})
		require.NoError(t, err)
	}

	summary, err := svc.ProjectSummary(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summary.Payments, 3)
	require.True(t, summary.Total.Equal(decimal.NewFromInt(87500)))

	_, err = svc.ProjectSummary(ctx, 99)
	require.ErrorIs(t, err, projects.ErrProjectNotFound)
}
