package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusAuthorized PaymentStatus = "authorized"
	PaymentStatusDeclined   PaymentStatus = "declined"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusVoided     PaymentStatus = "voided"
	PaymentStatusVoidFailed PaymentStatus = "void_failed"

	PaymentStatusCaptureFailed PaymentStatus = "capture_failed"
)

type Payment struct {
	ID         int
	UserID     int
	ShowtimeID int
	BookingID  *int
	ChargeID   *string
	Amount     decimal.Decimal
	Currency   string
	Status     PaymentStatus
	ErrorMsg   *string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
}

// Authorization is an approved charge.
type Authorization struct {
	ChargeID string
	Amount   decimal.Decimal
}

// PaymentAuthority is the external charge authority. Authorize places a hold
// on the card and returns a *PaymentDeclinedError when the charge is refused;
// any other error means the outcome is unknown. Capture collects an authorized
// charge once the booking exists. Void releases an authorized charge.
type PaymentAuthority interface {
	Authorize(ctx context.Context, cardRef string, amount decimal.Decimal, metadata map[string]string) (*Authorization, error)
	Capture(ctx context.Context, chargeID string) error
	Void(ctx context.Context, chargeID string) error
}
