package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrInvalidSeat       = errors.New("seat does not exist in the showroom")
	ErrEmptySelection    = errors.New("at least one ticket must be selected")
	ErrUnknownTicketType = errors.New("unknown ticket type")
	ErrPromotionNotFound = errors.New("promotion not found")
	ErrPromotionExpired  = errors.New("promotion is not active")
	ErrPromotionInvalid  = errors.New("promotion discount is out of range")
	ErrSeatConflict      = errors.New("seat(s) are already held or booked")
	ErrPaymentDeclined   = errors.New("payment was declined")
	ErrHoldExpired       = errors.New("your selections have expired, please select your seats again")
	ErrHoldNotFound      = errors.New("no seat hold matches the selection")
	ErrBookingNotAllowed = errors.New("user is not allowed to book")
)

// SeatConflictError lists the seats that made a hold request fail. It matches
// ErrSeatConflict with errors.Is.
type SeatConflictError struct {
	ShowtimeID int
	Seats      []SeatID
}

func (e *SeatConflictError) Error() string {
	labels := make([]string, len(e.Seats))
	for i, s := range e.Seats {
		labels[i] = s.String()
	}

	return fmt.Sprintf("%s: %s", ErrSeatConflict, strings.Join(labels, ", "))
}

func (e *SeatConflictError) Is(target error) bool {
	return target == ErrSeatConflict
}

// PaymentDeclinedError carries the reason reported by the payment authority.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	if e.Reason == "" {
		return ErrPaymentDeclined.Error()
	}

	return fmt.Sprintf("%s: %s", ErrPaymentDeclined, e.Reason)
}

func (e *PaymentDeclinedError) Is(target error) bool {
	return target == ErrPaymentDeclined
}
