package domain

import "time"

type SeatHold struct {
	ShowtimeID  int
	SeatID      SeatID
	HolderToken string
	ExpiresAt   time.Time
}

func (h SeatHold) Live(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}

// Occupancy is a point-in-time view of a showtime's booked seats and seats
// under a live hold. The two sets are disjoint.
type Occupancy struct {
	ShowtimeID int
	Booked     map[SeatID]struct{}
	Held       map[SeatID]struct{}
}

func NewOccupancy(showtimeID int) Occupancy {
	return Occupancy{
		ShowtimeID: showtimeID,
		Booked:     make(map[SeatID]struct{}),
		Held:       make(map[SeatID]struct{}),
	}
}

func (o Occupancy) Status(seat SeatID) SeatStatus {
	if _, ok := o.Booked[seat]; ok {
		return SeatBooked
	}

	if _, ok := o.Held[seat]; ok {
		return SeatHeld
	}

	return SeatAvailable
}
