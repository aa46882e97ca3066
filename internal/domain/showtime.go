package domain

import (
	"context"
	"time"
)

// Showroom is the seating layout of an auditorium. It is owned by the catalog
// and never modified by the booking core.
type Showroom struct {
	ID        int
	Name      string
	NumRows   int
	NumCols   int
	SeatCount int
}

func (s Showroom) Contains(seat SeatID) bool {
	return seat.Row >= 0 && seat.Row < s.NumRows && seat.Col >= 1 && seat.Col <= s.NumCols
}

type Showtime struct {
	ID         int
	MovieID    int
	MovieTitle string
	Showroom   Showroom
	StartTime  time.Time
}

type ShowtimeRepository interface {
	GetByID(ctx context.Context, id int) (*Showtime, error)
}
