package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) GetByIDAndUserID(
	ctx context.Context,
	bookingID,
	userID int) (*domain.Booking, error) {

	query := `
		SELECT id, showtime_id, user_id, promo_code, subtotal, discount, total, status, charge_id, created_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	booking, err := scanBooking(p.db.QueryRow(ctx, query, bookingID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	tickets, err := p.retrieveTickets(ctx, []int{booking.ID})
	if err != nil {
		return nil, err
	}

	booking.Tickets = tickets[booking.ID]

	return booking, nil
}

func (p *PostgresBookingRepository) GetByUserID(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			id, showtime_id, user_id, promo_code, subtotal, discount, total, status, charge_id, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	totalRecords := 0

	for rows.Next() {
		var (
			booking  domain.Booking
			chargeID *string
		)

		err := rows.Scan(
			&totalRecords,
			&booking.ID,
			&booking.ShowtimeID,
			&booking.UserID,
			&booking.PromoCode,
			&booking.Subtotal,
			&booking.Discount,
			&booking.Total,
			&booking.Status,
			&chargeID,
			&booking.BookingDate,
		)
		if err != nil {
			return nil, nil, err
		}

		if chargeID != nil {
			booking.ChargeID = *chargeID
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	if len(bookings) > 0 {
		ids := make([]int, len(bookings))
		for i, b := range bookings {
			ids[i] = b.ID
		}

		tickets, err := p.retrieveTickets(ctx, ids)
		if err != nil {
			return nil, nil, err
		}

		for i := range bookings {
			bookings[i].Tickets = tickets[bookings[i].ID]
		}
	}

	metadata := domain.NewMetadata(totalRecords, pagination)

	return bookings, metadata, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking  domain.Booking
		chargeID *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.ShowtimeID,
		&booking.UserID,
		&booking.PromoCode,
		&booking.Subtotal,
		&booking.Discount,
		&booking.Total,
		&booking.Status,
		&chargeID,
		&booking.BookingDate,
	)
	if err != nil {
		return nil, err
	}

	if chargeID != nil {
		booking.ChargeID = *chargeID
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) retrieveTickets(ctx context.Context, bookingIDs []int) (map[int][]domain.Ticket, error) {
	query := `
		SELECT booking_id, seat_label, ticket_type, unit_price
		FROM tickets
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, position
	`

	rows, err := p.db.Query(ctx, query, bookingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make(map[int][]domain.Ticket, len(bookingIDs))

	for rows.Next() {
		var (
			bookingID int
			label     string
			ticket    domain.Ticket
		)

		err = rows.Scan(&bookingID, &label, &ticket.Type, &ticket.UnitPrice)
		if err != nil {
			return nil, err
		}

		ticket.SeatID, err = domain.ParseSeatID(label)
		if err != nil {
			return nil, err
		}

		tickets[bookingID] = append(tickets[bookingID], ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
