package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
)

var hundred = decimal.NewFromInt(100)

// StripePaymentAuthority places a manual-capture PaymentIntent on a saved
// payment method. The intent is captured once the booking is committed and
// cancelled when the checkout is abandoned.
type StripePaymentAuthority struct {
	currency string
}

func NewStripePaymentAuthority(currency string) *StripePaymentAuthority {
	return &StripePaymentAuthority{
		currency: currency,
	}
}

func (s *StripePaymentAuthority) Authorize(
	ctx context.Context,
	cardRef string,
	amount decimal.Decimal,
	metadata map[string]string) (*domain.Authorization, error) {

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(toCents(amount)),
		Currency:      stripe.String(s.currency),
		PaymentMethod: stripe.String(cardRef),
		Confirm:       stripe.Bool(true),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	if token, ok := metadata["holder_token"]; ok {
		params.SetIdempotencyKey("authorize-" + token)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return nil, &domain.PaymentDeclinedError{Reason: stripeErr.Msg}
		}

		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		return &domain.Authorization{ChargeID: pi.ID, Amount: amount}, nil
	case stripe.PaymentIntentStatusRequiresAction:
		return nil, &domain.PaymentDeclinedError{Reason: "card requires additional authentication"}
	default:
		return nil, &domain.PaymentDeclinedError{Reason: fmt.Sprintf("payment intent ended in status %s", pi.Status)}
	}
}

func (s *StripePaymentAuthority) Capture(ctx context.Context, chargeID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + chargeID)

	_, err := paymentintent.Capture(chargeID, params)
	if err != nil {
		if unexpectedState(err) {
			return s.requireStatus(ctx, chargeID, stripe.PaymentIntentStatusSucceeded)
		}

		return fmt.Errorf("failed to capture payment intent %s: %w", chargeID, err)
	}

	return nil
}

// Void cancels an uncaptured intent. An intent that was captured in the
// meantime is refunded instead.
func (s *StripePaymentAuthority) Void(ctx context.Context, chargeID string) error {
	params := &stripe.PaymentIntentCancelParams{
		CancellationReason: stripe.String(string(stripe.PaymentIntentCancellationReasonAbandoned)),
	}
	params.Context = ctx
	params.SetIdempotencyKey("void-" + chargeID)

	_, err := paymentintent.Cancel(chargeID, params)
	if err == nil {
		return nil
	}

	if !unexpectedState(err) {
		return fmt.Errorf("failed to cancel payment intent %s: %w", chargeID, err)
	}

	return s.refund(ctx, chargeID)
}

func (s *StripePaymentAuthority) refund(ctx context.Context, chargeID string) error {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(chargeID),
	}
	params.Context = ctx
	params.SetIdempotencyKey("refund-" + chargeID)

	_, err := refund.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			return nil
		}

		return fmt.Errorf("failed to refund payment intent %s: %w", chargeID, err)
	}

	return nil
}

func (s *StripePaymentAuthority) requireStatus(ctx context.Context, chargeID string, want stripe.PaymentIntentStatus) error {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(chargeID, params)
	if err != nil {
		return fmt.Errorf("failed to read payment intent %s: %w", chargeID, err)
	}

	if pi.Status != want {
		return fmt.Errorf("payment intent %s is %s, want %s", chargeID, pi.Status, want)
	}

	return nil
}

func unexpectedState(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
