package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
)

// Mailer sends one email. The worker owns delivery so the HTTP path
// never blocks on SMTP.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NotifyDispatchJob turns queued notification envelopes into emails.
type NotifyDispatchJob struct {
	mailer     Mailer
	adminEmail string
	logger     *slog.Logger
}

// NewNotifyDispatchJob constructs the job. adminEmail receives the
// operational notifications that have no per-user recipient.
func NewNotifyDispatchJob(mailer Mailer, adminEmail string, logger *slog.Logger) *NotifyDispatchJob {
	return &NotifyDispatchJob{mailer: mailer, adminEmail: adminEmail, logger: logger}
}

// Handle processes one notify:dispatch task.
func (j *NotifyDispatchJob) Handle(ctx context.Context, task *asynq.Task) error {
	var envelope notify.Envelope
	if err := json.Unmarshal(task.Payload(), &envelope); err != nil {
		j.logger.Error("notify envelope decode", slog.Any("error", err))
		return asynq.SkipRetry
	}

	to, subject, body, err := j.render(envelope)
	if err != nil {
		j.logger.Error("notify render", slog.String("kind", string(envelope.Kind)), slog.Any("error", err))
		return asynq.SkipRetry
	}
	if to == "" {
		j.logger.Warn("notify without recipient", slog.String("kind", string(envelope.Kind)))
		return nil
	}

	if err := j.mailer.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send %s to %s: %w", envelope.Kind, to, err)
	}
	return nil
}

func (j *NotifyDispatchJob) render(envelope notify.Envelope) (to, subject, body string, err error) {
	switch envelope.Kind {
	case notify.KindTransferRecorded:
		var p notify.TransferRecorded
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = j.adminEmail
		subject = fmt.Sprintf("Inventory movement on %s", p.ProjectName)
		body = fmt.Sprintf("%s recorded %s of %s %s (%s) on %s at %s.",
			p.ActorName, p.Action, shared.FormatQuantity(p.Quantity), p.Unit, p.ProductName,
			p.ProjectName, shared.FormatDate(p.RecordedAt))
	case notify.KindLowStock:
		var p notify.LowStock
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = j.adminEmail
		subject = fmt.Sprintf("Low stock: %s on %s", p.ProductName, p.ProjectName)
		body = fmt.Sprintf("%s is down to %s %s on %s (reorder point %s). Arrange a restock.",
			p.ProductName, shared.FormatQuantity(p.CurrentQuantity), p.Unit, p.ProjectName,
			shared.FormatQuantity(p.ReorderPoint))
	case notify.KindProjectStatusChanged:
		var p notify.ProjectStatusChanged
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = p.OwnerEmail
		subject = fmt.Sprintf("Project %s is now %s", p.ProjectName, p.NewStatus)
		body = fmt.Sprintf("Your project %s moved from %s to %s.", p.ProjectName, p.OldStatus, p.NewStatus)
	case notify.KindPaymentRecorded:
		var p notify.PaymentRecorded
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = j.adminEmail
		subject = fmt.Sprintf("Payment received for %s", p.ProjectName)
		body = fmt.Sprintf("A payment of %s (%s, ref %s) was recorded for %s.",
			p.Amount, p.Method, p.Reference, p.ProjectName)
	case notify.KindOTPIssued:
		var p notify.OTPIssued
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = p.Email
		subject = "Your SiteTrack verification code"
		body = fmt.Sprintf("Your verification code is %s. It expires at %s.",
			p.Code, shared.FormatDate(p.ExpiresAt))
	case notify.KindWelcome:
		var p notify.Welcome
		if err = json.Unmarshal(envelope.Data, &p); err != nil {
			return
		}
		to = p.Email
		subject = "Welcome to SiteTrack"
		body = fmt.Sprintf("Hi %s, your SiteTrack account is ready.", p.Name)
	default:
		err = fmt.Errorf("unknown notification kind %q", envelope.Kind)
	}
	return
}
