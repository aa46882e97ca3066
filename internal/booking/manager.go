package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/events"
	"github.com/metinatakli/cinex-booking/internal/pricing"
	"github.com/metinatakli/cinex-booking/internal/seatmap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HoldLedger is the part of the reservation ledger a checkout needs.
type HoldLedger interface {
	Now() time.Time
	TryHold(ctx context.Context, showtimeID int, seats []domain.SeatID, holderToken string, ttl time.Duration) ([]domain.SeatHold, error)
	ReleaseHold(ctx context.Context, holderToken string) error
	Commit(ctx context.Context, holderToken string, draft domain.BookingDraft) (*domain.Booking, error)
}

type Deps struct {
	Showtimes  domain.ShowtimeRepository
	Bookings   domain.BookingRepository
	Payments   domain.PaymentRepository
	Authorizer domain.BookingAuthorizer
	Authority  domain.PaymentAuthority
	Ledger     HoldLedger
	Pricing    *pricing.Engine
	Events     events.Publisher
	Logger     *slog.Logger
}

type Config struct {
	HoldTTL  time.Duration
	Currency string

	// Retry budget for capturing or voiding a charge.
	VoidInitialInterval time.Duration
	VoidMaxInterval     time.Duration
	VoidMaxTries        uint
	VoidMaxElapsedTime  time.Duration
}

func DefaultConfig() Config {
	return Config{
		HoldTTL:             5 * time.Minute,
		Currency:            "USD",
		VoidInitialInterval: 200 * time.Millisecond,
		VoidMaxInterval:     5 * time.Second,
		VoidMaxTries:        6,
		VoidMaxElapsedTime:  30 * time.Second,
	}
}

type CheckoutRequest struct {
	UserID     int
	ShowtimeID int
	Tickets    []domain.TicketRequest
	PromoCode  *string
	CardRef    string
}

func (r CheckoutRequest) seats() []domain.SeatID {
	seats := make([]domain.SeatID, len(r.Tickets))
	for i, t := range r.Tickets {
		seats[i] = t.SeatID
	}
	return seats
}

// Manager coordinates a checkout across the ledger and the payment authority.
type Manager struct {
	showtimes  domain.ShowtimeRepository
	bookings   domain.BookingRepository
	payments   domain.PaymentRepository
	authorizer domain.BookingAuthorizer
	authority  domain.PaymentAuthority
	ledger     HoldLedger
	pricing    *pricing.Engine
	events     events.Publisher
	logger     *slog.Logger
	cfg        Config

	transitions metric.Int64Counter
	voids       metric.Int64Counter
	captures    metric.Int64Counter
}

func NewManager(deps Deps, cfg Config) (*Manager, error) {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}

	if cfg.HoldTTL <= 0 {
		return nil, errors.New("hold ttl must be positive")
	}

	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}

	meter := otel.Meter("github.com/metinatakli/cinex-booking/internal/booking")

	transitions, err := meter.Int64Counter(
		"booking.checkout.transitions",
		metric.WithDescription("Checkout state machine transitions by target state"),
	)
	if err != nil {
		return nil, err
	}

	voids, err := meter.Int64Counter(
		"booking.charge.voids",
		metric.WithDescription("Compensating voids by outcome"),
	)
	if err != nil {
		return nil, err
	}

	captures, err := meter.Int64Counter(
		"booking.charge.captures",
		metric.WithDescription("Charge captures by outcome"),
	)
	if err != nil {
		return nil, err
	}

	return &Manager{
		showtimes:   deps.Showtimes,
		bookings:    deps.Bookings,
		payments:    deps.Payments,
		authorizer:  deps.Authorizer,
		authority:   deps.Authority,
		ledger:      deps.Ledger,
		pricing:     deps.Pricing,
		events:      deps.Events,
		logger:      deps.Logger,
		cfg:         cfg,
		transitions: transitions,
		voids:       voids,
		captures:    captures,
	}, nil
}

func (m *Manager) HoldTTL() time.Duration {
	return m.cfg.HoldTTL
}

// Checkout runs one booking attempt from seat selection to a confirmed
// booking. On any failure no seat stays held and no authorized charge is left
// without a void attempt.
func (m *Manager) Checkout(ctx context.Context, req CheckoutRequest) (*domain.Booking, error) {
	tx := &transaction{
		manager: m,
		req:     req,
		state:   StateInitiated,
		logger:  m.logger.With("user_id", req.UserID, "showtime_id", req.ShowtimeID),
	}

	m.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(StateInitiated))))
	tx.logger.Info("checkout initiated", "seats", domain.SeatLabels(req.seats()))

	booking, err := tx.run(ctx)
	if err != nil {
		tx.abort(ctx, err)
		return nil, err
	}

	return booking, nil
}

func (m *Manager) Booking(ctx context.Context, bookingID, userID int) (*domain.Booking, error) {
	return m.bookings.GetByIDAndUserID(ctx, bookingID, userID)
}

func (m *Manager) History(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	return m.bookings.GetByUserID(ctx, userID, pagination)
}

// Validate runs every pre-mutation check of a checkout.
func (m *Manager) Validate(ctx context.Context, req CheckoutRequest) (*domain.Showtime, error) {
	err := m.authorizer.CanBook(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	showtime, err := m.showtimes.GetByID(ctx, req.ShowtimeID)
	if err != nil {
		return nil, err
	}

	err = seatmap.ValidateSelection(showtime.Showroom, req.seats())
	if err != nil {
		return nil, err
	}

	for _, t := range req.Tickets {
		if _, err := m.pricing.PriceOf(t.Type); err != nil {
			return nil, err
		}
	}

	return showtime, nil
}

func (m *Manager) publish(ctx context.Context, logger *slog.Logger, event events.Event) {
	err := m.events.Publish(ctx, event)
	if err != nil {
		logger.Warn("failed to publish event", "type", event.Type, "error", err)
	}
}

func paymentMetadata(req CheckoutRequest, holderToken string) map[string]string {
	return map[string]string{
		"holder_token": holderToken,
		"showtime_id":  strconv.Itoa(req.ShowtimeID),
		"user_id":      strconv.Itoa(req.UserID),
	}
}

func newHolderToken() string {
	return uuid.NewString()
}

var (
	errVoidFailed    = errors.New("charge could not be voided")
	errCaptureFailed = errors.New("charge could not be captured")
)

// retryCharge calls op with the charge retry budget. Both the capture and the
// void of a checkout draw on it, never both for the same checkout.
func (m *Manager) retryCharge(
	ctx context.Context,
	logger *slog.Logger,
	action string,
	op func(ctx context.Context) error) (int, error) {

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = m.cfg.VoidInitialInterval
	expBackoff.MaxInterval = m.cfg.VoidMaxInterval

	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		return struct{}{}, op(ctx)
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(m.cfg.VoidMaxTries),
		backoff.WithMaxElapsedTime(m.cfg.VoidMaxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn(action+" attempt failed, retrying", "error", err, "retry_in", next)
		}),
	)

	return attempts, err
}

// captureCharge collects the charge of a committed booking. The booking stays
// confirmed when the capture is exhausted; the payment is flagged and an
// escalation event goes out instead.
func (m *Manager) captureCharge(ctx context.Context, tx *transaction, booking *domain.Booking) {
	cctx := context.WithoutCancel(ctx)
	chargeID := tx.authorization.ChargeID
	logger := tx.logger.With("charge_id", chargeID, "booking_id", booking.ID)

	attempts, err := m.retryCharge(cctx, logger, "capture", func(ctx context.Context) error {
		return m.authority.Capture(ctx, chargeID)
	})

	if err == nil {
		m.captures.Add(cctx, 1, metric.WithAttributes(attribute.String("outcome", "captured")))
		logger.Info("charge captured", "attempts", attempts)
		m.updatePayment(cctx, logger, tx.payment, domain.PaymentStatusCompleted, nil)
		return
	}

	m.captures.Add(cctx, 1, metric.WithAttributes(attribute.String("outcome", "escalated")))
	logger.Error("charge capture exhausted retries, escalating", "attempts", attempts, "error", err)

	reason := fmt.Errorf("%w: %w", errCaptureFailed, err).Error()
	m.updatePayment(cctx, logger, tx.payment, domain.PaymentStatusCaptureFailed, &reason)

	m.publish(cctx, logger, events.New(events.TypeChargeCaptureEscalated, events.ChargeCaptureEscalated{
		PaymentID:  tx.payment.ID,
		BookingID:  booking.ID,
		ChargeID:   chargeID,
		ShowtimeID: booking.ShowtimeID,
		UserID:     booking.UserID,
		Amount:     tx.authorization.Amount,
		Reason:     reason,
	}))
}

// voidCharge reverses an authorized charge on a context detached from the
// caller so a cancelled request cannot skip compensation.
func (m *Manager) voidCharge(ctx context.Context, tx *transaction) {
	vctx := context.WithoutCancel(ctx)
	chargeID := tx.authorization.ChargeID
	logger := tx.logger.With("charge_id", chargeID)

	attempts, err := m.retryCharge(vctx, logger, "void", func(ctx context.Context) error {
		return m.authority.Void(ctx, chargeID)
	})

	if err == nil {
		m.voids.Add(vctx, 1, metric.WithAttributes(attribute.String("outcome", "voided")))
		logger.Info("charge voided", "attempts", attempts)
		m.updatePayment(vctx, logger, tx.payment, domain.PaymentStatusVoided, nil)
		return
	}

	m.voids.Add(vctx, 1, metric.WithAttributes(attribute.String("outcome", "escalated")))
	logger.Error("charge void exhausted retries, escalating", "attempts", attempts, "error", err)

	reason := fmt.Errorf("%w: %w", errVoidFailed, err).Error()
	m.updatePayment(vctx, logger, tx.payment, domain.PaymentStatusVoidFailed, &reason)

	paymentID := 0
	if tx.payment != nil {
		paymentID = tx.payment.ID
	}

	m.publish(vctx, logger, events.New(events.TypeChargeVoidEscalated, events.ChargeVoidEscalated{
		PaymentID:   paymentID,
		ChargeID:    chargeID,
		ShowtimeID:  tx.req.ShowtimeID,
		UserID:      tx.req.UserID,
		Amount:      tx.authorization.Amount,
		HolderToken: tx.holderToken,
		Reason:      reason,
	}))
}

func (m *Manager) updatePayment(
	ctx context.Context,
	logger *slog.Logger,
	payment *domain.Payment,
	status domain.PaymentStatus,
	errMsg *string) {

	if payment == nil {
		return
	}

	now := time.Now()
	payment.Status = status
	payment.ErrorMsg = errMsg
	payment.UpdatedAt = &now

	err := m.payments.Update(ctx, payment)
	if err != nil {
		logger.Error("failed to update payment record", "payment_id", payment.ID, "status", status, "error", err)
	}
}
