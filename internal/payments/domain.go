// Package payments records client payments and point-of-sale entries
// against a project.
package payments

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Method is how a payment was made.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCheck    Method = "check"
	MethodTransfer Method = "bank_transfer"
	MethodGCash    Method = "gcash"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	switch m {
	case MethodCash, MethodCheck, MethodTransfer, MethodGCash:
		return true
	}
	return false
}

// Payment is one recorded payment.
type Payment struct {
	ID         int64           `json:"id"`
	ProjectID  int64           `json:"project_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     Method          `json:"method"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes"`
	RecordedBy int64           `json:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at"`
}

// PaymentInput carries the fields for a new payment.
type PaymentInput struct {
	ProjectID  int64
	Amount     decimal.Decimal
	Method     Method
	Reference  string
	Notes      string
	RecordedBy int64
}

var (
	// ErrPaymentNotFound indicates an unknown payment id.
	ErrPaymentNotFound = errors.New("payments: payment not found")
	// ErrInvalidPayment indicates missing or malformed fields.
	ErrInvalidPayment = errors.New("payments: invalid payment")
)
