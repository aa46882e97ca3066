package seatmap

import (
	"context"
	"fmt"

	"github.com/metinatakli/cinex-booking/internal/domain"
)

// ListSeats enumerates every seat of the showroom in row-major order.
func ListSeats(showroom domain.Showroom) []domain.SeatID {
	seats := make([]domain.SeatID, 0, showroom.NumRows*showroom.NumCols)

	for row := 0; row < showroom.NumRows; row++ {
		for col := 1; col <= showroom.NumCols; col++ {
			seats = append(seats, domain.SeatID{Row: row, Col: col})
		}
	}

	return seats
}

func Validate(showroom domain.Showroom, seat domain.SeatID) error {
	if !showroom.Contains(seat) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidSeat, seat)
	}

	return nil
}

// ValidateSelection checks a selection before any seat is touched: it must be
// non-empty, every seat must exist and no seat may appear twice.
func ValidateSelection(showroom domain.Showroom, seats []domain.SeatID) error {
	if len(seats) == 0 {
		return domain.ErrEmptySelection
	}

	seen := make(map[domain.SeatID]struct{}, len(seats))

	for _, seat := range seats {
		if err := Validate(showroom, seat); err != nil {
			return err
		}

		if _, dup := seen[seat]; dup {
			return fmt.Errorf("%w: %s selected more than once", domain.ErrInvalidSeat, seat)
		}
		seen[seat] = struct{}{}
	}

	return nil
}

// OccupancyReader is the read side of the reservation ledger.
type OccupancyReader interface {
	Occupancy(ctx context.Context, showtimeID int) (domain.Occupancy, error)
}

type Row struct {
	Label string
	Seats []Seat
}

type Seat struct {
	ID     domain.SeatID
	Status domain.SeatStatus
}

type Grid struct {
	ShowtimeID int
	Showroom   domain.Showroom
	Rows       []Row
}

// Map answers seat state questions for a showtime. It never changes state.
type Map struct {
	ledger OccupancyReader
}

func New(ledger OccupancyReader) *Map {
	return &Map{ledger: ledger}
}

func (m *Map) Classify(ctx context.Context, showtime *domain.Showtime, seat domain.SeatID) (domain.SeatStatus, error) {
	if err := Validate(showtime.Showroom, seat); err != nil {
		return "", err
	}

	occupancy, err := m.ledger.Occupancy(ctx, showtime.ID)
	if err != nil {
		return "", err
	}

	return occupancy.Status(seat), nil
}

func (m *Map) Grid(ctx context.Context, showtime *domain.Showtime) (*Grid, error) {
	occupancy, err := m.ledger.Occupancy(ctx, showtime.ID)
	if err != nil {
		return nil, err
	}

	return BuildGrid(showtime, occupancy), nil
}

func BuildGrid(showtime *domain.Showtime, occupancy domain.Occupancy) *Grid {
	room := showtime.Showroom
	grid := &Grid{
		ShowtimeID: showtime.ID,
		Showroom:   room,
		Rows:       make([]Row, room.NumRows),
	}

	for r := range grid.Rows {
		row := Row{
			Label: domain.SeatID{Row: r}.RowLabel(),
			Seats: make([]Seat, room.NumCols),
		}

		for c := range row.Seats {
			id := domain.SeatID{Row: r, Col: c + 1}
			row.Seats[c] = Seat{ID: id, Status: occupancy.Status(id)}
		}

		grid.Rows[r] = row
	}

	return grid
}
