package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// Store is the persistence behind a Ledger. Each method is atomic with respect
// to the seats of a single showtime; operations on different showtimes must
// not block each other. now is supplied by the Ledger so stores never read a
// clock of their own.
type Store interface {
	TryHold(
		ctx context.Context,
		showtimeID int,
		seats []domain.SeatID,
		holderToken string,
		expiresAt time.Time,
		now time.Time) ([]domain.SeatHold, error)
	ReleaseHold(ctx context.Context, holderToken string) error
	Commit(ctx context.Context, holderToken string, draft domain.BookingDraft, now time.Time) (*domain.Booking, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	Occupancy(ctx context.Context, showtimeID int, now time.Time) (domain.Occupancy, error)
}

var ErrInvalidTTL = errors.New("hold ttl must be positive")

// Ledger is the single authority on which seats of a showtime are held or
// booked.
type Ledger struct {
	store  Store
	clock  func() time.Time
	logger *slog.Logger
}

type Option func(*Ledger)

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		clock:  time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *Ledger) Now() time.Time {
	return l.clock()
}

// TryHold places a hold on every seat or on none. When any seat is booked or
// under a live hold it returns a *domain.SeatConflictError naming them.
func (l *Ledger) TryHold(
	ctx context.Context,
	showtimeID int,
	seats []domain.SeatID,
	holderToken string,
	ttl time.Duration) ([]domain.SeatHold, error) {

	if len(seats) == 0 {
		return nil, domain.ErrEmptySelection
	}

	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	seats = uniqueSeats(seats)
	now := l.clock()

	holds, err := l.store.TryHold(ctx, showtimeID, seats, holderToken, now.Add(ttl), now)
	if err != nil {
		var conflict *domain.SeatConflictError
		if errors.As(err, &conflict) {
			l.logger.Info("seat hold rejected",
				"showtime_id", showtimeID,
				"holder_token", holderToken,
				"conflicting_seats", domain.SeatLabels(conflict.Seats))
		}

		return nil, err
	}

	l.logger.Debug("seats held",
		"showtime_id", showtimeID,
		"holder_token", holderToken,
		"seats", domain.SeatLabels(seats),
		"expires_at", now.Add(ttl))

	return holds, nil
}

// ReleaseHold drops every hold of the token. Releasing an unknown or already
// released token is not an error.
func (l *Ledger) ReleaseHold(ctx context.Context, holderToken string) error {
	err := l.store.ReleaseHold(ctx, holderToken)
	if err != nil {
		return fmt.Errorf("failed to release hold %s: %w", holderToken, err)
	}

	return nil
}

// Commit turns the token's holds into a confirmed booking. The draft's tickets
// must cover exactly the held seats.
func (l *Ledger) Commit(ctx context.Context, holderToken string, draft domain.BookingDraft) (*domain.Booking, error) {
	if len(draft.Tickets) == 0 {
		return nil, domain.ErrEmptySelection
	}

	booking, err := l.store.Commit(ctx, holderToken, draft, l.clock())
	if err != nil {
		return nil, err
	}

	l.logger.Info("booking committed",
		"showtime_id", booking.ShowtimeID,
		"booking_id", booking.ID,
		"holder_token", holderToken)

	return booking, nil
}

func (l *Ledger) SweepExpired(ctx context.Context) (int, error) {
	released, err := l.store.SweepExpired(ctx, l.clock())
	if err != nil {
		return 0, fmt.Errorf("failed to sweep expired holds: %w", err)
	}

	return released, nil
}

func (l *Ledger) Occupancy(ctx context.Context, showtimeID int) (domain.Occupancy, error) {
	return l.store.Occupancy(ctx, showtimeID, l.clock())
}

// uniqueSeats drops repeated seats and keeps the first occurrence order.
func uniqueSeats(seats []domain.SeatID) []domain.SeatID {
	seen := make(map[domain.SeatID]struct{}, len(seats))
	out := make([]domain.SeatID, 0, len(seats))

	for _, s := range seats {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out
}

// SameSeats reports whether the held seats and the ticket seats are the same
// set.
func SameSeats(held []domain.SeatID, tickets []domain.Ticket) bool {
	if len(held) != len(tickets) {
		return false
	}

	want := make(map[domain.SeatID]struct{}, len(held))
	for _, s := range held {
		want[s] = struct{}{}
	}

	for _, t := range tickets {
		if _, ok := want[t.SeatID]; !ok {
			return false
		}
		delete(want, t.SeatID)
	}

	return len(want) == 0
}
