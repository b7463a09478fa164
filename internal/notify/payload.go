// Package notify delivers application events to users via background jobs.
// Each notification kind carries its own payload type so the email and
// in-app templates receive exactly the fields they need.
package notify

import "time"

// Kind identifies a notification variant.
type Kind string

const (
	// KindTransferRecorded fires after an inventory movement is written.
	KindTransferRecorded Kind = "inventory.transfer_recorded"
	// KindLowStock fires when a movement leaves a project item at or below
	// its reorder point.
	KindLowStock Kind = "inventory.low_stock"
	// KindProjectStatusChanged fires on project lifecycle transitions.
	KindProjectStatusChanged Kind = "project.status_changed"
	// KindPaymentRecorded fires after a payment record is created.
	KindPaymentRecorded Kind = "payment.recorded"
	// KindOTPIssued fires when a login verification code is generated.
	KindOTPIssued Kind = "auth.otp_issued"
	// KindWelcome fires after a successful registration.
	KindWelcome Kind = "auth.welcome"
)

// Payload is implemented by every notification variant.
type Payload interface {
	NotificationKind() Kind
}

// TransferRecorded describes a ledger movement for notification templates.
type TransferRecorded struct {
	ProjectID   int64     `json:"project_id"`
	ProjectName string    `json:"project_name"`
	ProductName string    `json:"product_name"`
	Action      string    `json:"action"`
	Quantity    float64   `json:"quantity"`
	Unit        string    `json:"unit"`
	ActorName   string    `json:"actor_name"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// NotificationKind implements Payload.
func (TransferRecorded) NotificationKind() Kind { return KindTransferRecorded }

// LowStock warns that a project item dropped to its reorder point.
type LowStock struct {
	ProjectID       int64   `json:"project_id"`
	ProjectName     string  `json:"project_name"`
	ProductName     string  `json:"product_name"`
	CurrentQuantity float64 `json:"current_quantity"`
	ReorderPoint    float64 `json:"reorder_point"`
	Unit            string  `json:"unit"`
}

// NotificationKind implements Payload.
func (LowStock) NotificationKind() Kind { return KindLowStock }

// ProjectStatusChanged describes a lifecycle transition.
type ProjectStatusChanged struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	OwnerEmail  string `json:"owner_email"`
}

// NotificationKind implements Payload.
func (ProjectStatusChanged) NotificationKind() Kind { return KindProjectStatusChanged }

// PaymentRecorded describes a new payment or POS record.
type PaymentRecorded struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	Reference   string `json:"reference"`
}

// NotificationKind implements Payload.
func (PaymentRecorded) NotificationKind() Kind { return KindPaymentRecorded }

// OTPIssued carries a login verification code to the mailer.
type OTPIssued struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NotificationKind implements Payload.
func (OTPIssued) NotificationKind() Kind { return KindOTPIssued }

// Welcome greets a newly registered user.
type Welcome struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NotificationKind implements Payload.
func (Welcome) NotificationKind() Kind { return KindWelcome }
