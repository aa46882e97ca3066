package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// PostgresUserRepository reads the users table owned by the auth service.
type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// CanBook allows activated users whose account has not been deactivated.
func (p *PostgresUserRepository) CanBook(ctx context.Context, userID int) error {
	query := `SELECT activated, is_active FROM users WHERE id = $1`

	var activated, isActive bool

	err := p.db.QueryRow(ctx, query, userID).Scan(&activated, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBookingNotAllowed
		}

		return err
	}

	if !activated || !isActive {
		return domain.ErrBookingNotAllowed
	}

	return nil
}
