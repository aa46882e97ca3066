package booking

import (
	"context"
	"errors"
	"log/slog"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type State string

const (
	StateInitiated   State = "initiated"
	StateHeld        State = "held"
	StateAuthorizing State = "authorizing"
	StateCommitted   State = "committed"
	StateAborted     State = "aborted"
)

// transaction is the state of a single checkout attempt.
type transaction struct {
	manager *Manager
	req     CheckoutRequest
	state   State
	logger  *slog.Logger

	holderToken   string
	held          bool
	payment       *domain.Payment
	authorization *domain.Authorization
}

func (tx *transaction) transition(ctx context.Context, to State) {
	from := tx.state
	tx.state = to

	tx.manager.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(to))))
	tx.logger.Info("checkout state changed", "from", from, "to", to, "holder_token", tx.holderToken)
}

func (tx *transaction) run(ctx context.Context) (*domain.Booking, error) {
	m := tx.manager

	_, err := m.Validate(ctx, tx.req)
	if err != nil {
		return nil, err
	}

	tx.holderToken = newHolderToken()

	_, err = m.ledger.TryHold(ctx, tx.req.ShowtimeID, tx.req.seats(), tx.holderToken, m.cfg.HoldTTL)
	if err != nil {
		return nil, err
	}

	tx.held = true
	tx.transition(ctx, StateHeld)

	quote, err := m.pricing.Quote(ctx, tx.req.Tickets, tx.req.PromoCode, m.ledger.Now())
	if err != nil {
		return nil, err
	}

	tx.transition(ctx, StateAuthorizing)

	err = tx.authorize(ctx, quote.Total)
	if err != nil {
		return nil, err
	}

	draft := domain.BookingDraft{
		ShowtimeID: tx.req.ShowtimeID,
		UserID:     tx.req.UserID,
		Tickets:    quote.Tickets,
		PromoCode:  quote.PromoCode,
		Subtotal:   quote.Subtotal,
		Discount:   quote.Discount,
		Total:      quote.Total,
	}
	if tx.authorization != nil {
		draft.ChargeID = tx.authorization.ChargeID
	}

	booking, err := m.ledger.Commit(ctx, tx.holderToken, draft)
	if err != nil {
		return nil, err
	}

	tx.held = false
	tx.transition(ctx, StateCommitted)

	if tx.payment != nil {
		tx.payment.BookingID = &booking.ID
		m.captureCharge(ctx, tx, booking)
	}

	m.publish(ctx, tx.logger, events.New(events.TypeBookingConfirmed, events.BookingConfirmed{
		BookingID:  booking.ID,
		ShowtimeID: booking.ShowtimeID,
		UserID:     booking.UserID,
		Seats:      domain.SeatLabels(booking.SeatIDs()),
		Total:      booking.Total,
		ChargeID:   booking.ChargeID,
	}))

	return booking, nil
}

// abort compensates in reverse order: void the charge, then release the hold.
func (tx *transaction) abort(ctx context.Context, cause error) {
	m := tx.manager

	if tx.authorization != nil {
		m.voidCharge(ctx, tx)
	}

	if tx.held {
		err := m.ledger.ReleaseHold(context.WithoutCancel(ctx), tx.holderToken)
		if err != nil {
			tx.logger.Error("failed to release hold", "holder_token", tx.holderToken, "error", err)
		}
		tx.held = false
	}

	tx.transition(ctx, StateAborted)

	level := slog.LevelWarn
	if isBusinessError(cause) {
		level = slog.LevelInfo
	}
	tx.logger.Log(ctx, level, "checkout aborted", "error", cause)
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrSeatConflict,
		domain.ErrPaymentDeclined,
		domain.ErrInvalidSeat,
		domain.ErrEmptySelection,
		domain.ErrUnknownTicketType,
		domain.ErrPromotionNotFound,
		domain.ErrPromotionExpired,
		domain.ErrPromotionInvalid,
		domain.ErrBookingNotAllowed,
		domain.ErrRecordNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
