package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          int
	ShowtimeID  int
	UserID      int
	Tickets     []Ticket
	PromoCode   *string
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
	Status      BookingStatus
	ChargeID    string
	BookingDate time.Time
}

// SeatIDs returns the ticket seats in ticket order.
func (b *Booking) SeatIDs() []SeatID {
	seats := make([]SeatID, len(b.Tickets))
	for i, t := range b.Tickets {
		seats[i] = t.SeatID
	}

	return seats
}

// BookingDraft is everything needed to turn a hold into a booking.
type BookingDraft struct {
	ShowtimeID int
	UserID     int
	Tickets    []Ticket
	PromoCode  *string
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	ChargeID   string
}

type BookingRepository interface {
	GetByIDAndUserID(ctx context.Context, bookingID, userID int) (*Booking, error)
	GetByUserID(ctx context.Context, userID int, pagination Pagination) ([]Booking, *Metadata, error)
}
