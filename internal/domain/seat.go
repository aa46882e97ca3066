package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MaxRows is the number of addressable rows, one per letter A..Z.
const MaxRows = 26

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatHeld      SeatStatus = "held"
	SeatBooked    SeatStatus = "booked"
)

// SeatID addresses a seat inside a showroom. Row is zero based (0 is row A),
// Col starts at 1. The text form is the row letter followed by the column,
// e.g. "A1".
type SeatID struct {
	Row int
	Col int
}

// ParseSeatID accepts "A1" as well as the "Ax1" form. Row letters are case
// insensitive.
func ParseSeatID(s string) (SeatID, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}

	letter := s[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}

	rest := s[1:]
	if rest[0] == 'x' || rest[0] == 'X' {
		rest = rest[1:]
	}

	if rest == "" || rest[0] < '0' || rest[0] > '9' {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}

	col, err := strconv.Atoi(rest)
	if err != nil || col < 1 {
		return SeatID{}, fmt.Errorf("%w: %q", ErrInvalidSeat, s)
	}

	return SeatID{Row: int(letter - 'A'), Col: col}, nil
}

func (s SeatID) RowLabel() string {
	return string(rune('A' + s.Row))
}

func (s SeatID) String() string {
	return s.RowLabel() + strconv.Itoa(s.Col)
}

func (s SeatID) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SeatID) UnmarshalText(text []byte) error {
	id, err := ParseSeatID(string(text))
	if err != nil {
		return err
	}

	*s = id
	return nil
}

// Compare orders seats row-major.
func (s SeatID) Compare(other SeatID) int {
	if c := cmp.Compare(s.Row, other.Row); c != 0 {
		return c
	}

	return cmp.Compare(s.Col, other.Col)
}

func SortSeats(seats []SeatID) {
	slices.SortFunc(seats, SeatID.Compare)
}

func SeatLabels(seats []SeatID) []string {
	labels := make([]string, len(seats))
	for i, s := range seats {
		labels[i] = s.String()
	}

	return labels
}
