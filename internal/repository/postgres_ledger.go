package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/ledger"
)

// PostgresLedgerStore keeps holds and booked seats in seat_occupancy. Writes
// for a showtime are serialized with a transaction scoped advisory lock and
// the table's primary key rejects any double occupancy that slips past it.
type PostgresLedgerStore struct {
	db *pgxpool.Pool
}

func NewPostgresLedgerStore(db *pgxpool.Pool) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

func (p *PostgresLedgerStore) TryHold(
	ctx context.Context,
	showtimeID int,
	seats []domain.SeatID,
	holderToken string,
	expiresAt time.Time,
	now time.Time) ([]domain.SeatHold, error) {

	labels := domain.SeatLabels(seats)
	holds := make([]domain.SeatHold, len(seats))

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockShowtime(ctx, tx, showtimeID)
		if err != nil {
			return err
		}

		var otherShowtime int
		query := `
			SELECT showtime_id
			FROM seat_occupancy
			WHERE holder_token = $1 AND showtime_id <> $2 AND state = 'held'
			LIMIT 1
		`

		err = tx.QueryRow(ctx, query, holderToken, showtimeID).Scan(&otherShowtime)
		if err == nil {
			return ledger.ErrTokenInUse
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		query = `
			DELETE FROM seat_occupancy
			WHERE showtime_id = $1 AND seat_label = ANY($2) AND state = 'held' AND expires_at <= $3
		`

		_, err = tx.Exec(ctx, query, showtimeID, labels, now)
		if err != nil {
			return err
		}

		query = `
			SELECT seat_label
			FROM seat_occupancy
			WHERE showtime_id = $1 AND seat_label = ANY($2)
		`

		rows, err := tx.Query(ctx, query, showtimeID, labels)
		if err != nil {
			return err
		}

		taken, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		if len(taken) > 0 {
			return seatConflict(showtimeID, taken)
		}

		rowsToCopy := make([][]any, len(seats))
		for i, seat := range seats {
			rowsToCopy[i] = []any{showtimeID, seat.String(), "held", holderToken, expiresAt}
			holds[i] = domain.SeatHold{
				ShowtimeID:  showtimeID,
				SeatID:      seat,
				HolderToken: holderToken,
				ExpiresAt:   expiresAt,
			}
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"seat_occupancy"},
			[]string{"showtime_id", "seat_label", "state", "holder_token", "expires_at"},
			pgx.CopyFromRows(rowsToCopy),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, occupiedSeatConflict(showtimeID, pgErr, seats)
		}

		return nil, err
	}

	return holds, nil
}

var occupiedKeyDetail = regexp.MustCompile(`\(showtime_id, seat_label\)=\(\d+, ([^)]+)\)`)

// occupiedSeatConflict names the seat reported by a seat_occupancy key
// violation. When the detail cannot be read every requested seat is reported.
func occupiedSeatConflict(showtimeID int, pgErr *pgconn.PgError, seats []domain.SeatID) error {
	match := occupiedKeyDetail.FindStringSubmatch(pgErr.Detail)
	if match == nil {
		return &domain.SeatConflictError{ShowtimeID: showtimeID, Seats: seats}
	}

	err := seatConflict(showtimeID, []string{match[1]})

	var conflict *domain.SeatConflictError
	if !errors.As(err, &conflict) {
		return &domain.SeatConflictError{ShowtimeID: showtimeID, Seats: seats}
	}

	return conflict
}

func seatConflict(showtimeID int, labels []string) error {
	conflicts := make([]domain.SeatID, 0, len(labels))
	for _, label := range labels {
		seat, err := domain.ParseSeatID(label)
		if err != nil {
			return err
		}
		conflicts = append(conflicts, seat)
	}

	domain.SortSeats(conflicts)

	return &domain.SeatConflictError{ShowtimeID: showtimeID, Seats: conflicts}
}

func (p *PostgresLedgerStore) ReleaseHold(ctx context.Context, holderToken string) error {
	query := `DELETE FROM seat_occupancy WHERE holder_token = $1 AND state = 'held'`

	_, err := p.db.Exec(ctx, query, holderToken)
	return err
}

func (p *PostgresLedgerStore) Commit(
	ctx context.Context,
	holderToken string,
	draft domain.BookingDraft,
	now time.Time) (*domain.Booking, error) {

	booking := &domain.Booking{
		ShowtimeID: draft.ShowtimeID,
		UserID:     draft.UserID,
		Tickets:    draft.Tickets,
		PromoCode:  draft.PromoCode,
		Subtotal:   draft.Subtotal,
		Discount:   draft.Discount,
		Total:      draft.Total,
		Status:     domain.BookingConfirmed,
		ChargeID:   draft.ChargeID,
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockShowtime(ctx, tx, draft.ShowtimeID)
		if err != nil {
			return err
		}

		query := `
			SELECT showtime_id, seat_label, expires_at
			FROM seat_occupancy
			WHERE holder_token = $1 AND state = 'held'
			FOR UPDATE
		`

		rows, err := tx.Query(ctx, query, holderToken)
		if err != nil {
			return err
		}

		var held []domain.SeatID
		expired := false
		otherShowtime := false

		for rows.Next() {
			var (
				showtimeID int
				label      string
				expiresAt  time.Time
			)

			err = rows.Scan(&showtimeID, &label, &expiresAt)
			if err != nil {
				rows.Close()
				return err
			}

			seat, err := domain.ParseSeatID(label)
			if err != nil {
				rows.Close()
				return err
			}

			held = append(held, seat)
			expired = expired || !expiresAt.After(now)
			otherShowtime = otherShowtime || showtimeID != draft.ShowtimeID
		}
		rows.Close()

		if err = rows.Err(); err != nil {
			return err
		}

		switch {
		case len(held) == 0 || otherShowtime:
			return domain.ErrHoldNotFound
		case expired:
			return domain.ErrHoldExpired
		case !ledger.SameSeats(held, draft.Tickets):
			return domain.ErrHoldNotFound
		}

		query = `
			INSERT INTO bookings (user_id, showtime_id, promo_code, subtotal, discount, total, status, charge_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
			RETURNING id, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			booking.UserID,
			booking.ShowtimeID,
			booking.PromoCode,
			booking.Subtotal,
			booking.Discount,
			booking.Total,
			booking.Status,
			booking.ChargeID).Scan(&booking.ID, &booking.BookingDate)
		if err != nil {
			return err
		}

		ticketRows := make([][]any, len(booking.Tickets))
		for i, t := range booking.Tickets {
			ticketRows[i] = []any{booking.ID, booking.ShowtimeID, t.SeatID.String(), i, string(t.Type), t.UnitPrice}
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"tickets"},
			[]string{"booking_id", "showtime_id", "seat_label", "position", "ticket_type", "unit_price"},
			pgx.CopyFromRows(ticketRows),
		)
		if err != nil {
			return err
		}

		query = `
			UPDATE seat_occupancy
			SET state = 'booked', booking_id = $1, holder_token = NULL, expires_at = NULL
			WHERE holder_token = $2 AND state = 'held'
		`

		_, err = tx.Exec(ctx, query, booking.ID, holderToken)
		return err
	})

	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (p *PostgresLedgerStore) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM seat_occupancy WHERE state = 'held' AND expires_at <= $1`

	tag, err := p.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return int(tag.RowsAffected()), nil
}

func (p *PostgresLedgerStore) Occupancy(ctx context.Context, showtimeID int, now time.Time) (domain.Occupancy, error) {
	occupancy := domain.NewOccupancy(showtimeID)

	query := `
		SELECT seat_label, state
		FROM seat_occupancy
		WHERE showtime_id = $1 AND (state = 'booked' OR expires_at > $2)
	`

	rows, err := p.db.Query(ctx, query, showtimeID, now)
	if err != nil {
		return occupancy, err
	}
	defer rows.Close()

	for rows.Next() {
		var label, state string

		err = rows.Scan(&label, &state)
		if err != nil {
			return occupancy, err
		}

		seat, err := domain.ParseSeatID(label)
		if err != nil {
			return occupancy, err
		}

		if state == string(domain.SeatBooked) {
			occupancy.Booked[seat] = struct{}{}
		} else {
			occupancy.Held[seat] = struct{}{}
		}
	}

	if err = rows.Err(); err != nil {
		return occupancy, err
	}

	return occupancy, nil
}
