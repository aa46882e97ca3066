package repository

import (
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupiedSeatConflict(t *testing.T) {
	requested := []domain.SeatID{{Row: 0, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 3}}

	tests := []struct {
		name      string
		detail    string
		wantSeats []string
	}{
		{
			name:      "should name only the seat in the key violation",
			detail:    "Key (showtime_id, seat_label)=(1, B2) already exists.",
			wantSeats: []string{"B2"},
		},
		{
			name:      "should fall back to the requested seats without a detail",
			detail:    "",
			wantSeats: []string{"A1", "B2", "C3"},
		},
		{
			name:      "should fall back to the requested seats for an unreadable label",
			detail:    "Key (showtime_id, seat_label)=(1, ??) already exists.",
			wantSeats: []string{"A1", "B2", "C3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: tt.detail}

			err := occupiedSeatConflict(1, pgErr, requested)

			var conflict *domain.SeatConflictError
			require.ErrorAs(t, err, &conflict)
			assert.ErrorIs(t, err, domain.ErrSeatConflict)
			assert.Equal(t, 1, conflict.ShowtimeID)
			assert.Equal(t, tt.wantSeats, domain.SeatLabels(conflict.Seats))
		})
	}
}
