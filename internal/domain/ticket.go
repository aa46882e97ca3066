package domain

import "github.com/shopspring/decimal"

type TicketType string

const (
	TicketAdult  TicketType = "adult"
	TicketChild  TicketType = "child"
	TicketSenior TicketType = "senior"
)

// TicketRequest is one line of a seat selection before it is priced.
type TicketRequest struct {
	SeatID SeatID
	Type   TicketType
}

type Ticket struct {
	SeatID    SeatID
	Type      TicketType
	UnitPrice decimal.Decimal
}
