package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

type PostgresShowtimeRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowtimeRepository(db *pgxpool.Pool) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetByID(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT
			s.id,
			s.movie_id,
			m.title,
			s.start_time,
			r.id,
			r.name,
			r.num_rows,
			r.num_cols,
			r.seat_count
		FROM showtimes s
		JOIN movies m ON s.movie_id = m.id
		JOIN showrooms r ON s.showroom_id = r.id
		WHERE s.id = $1
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.MovieID,
		&showtime.MovieTitle,
		&showtime.StartTime,
		&showtime.Showroom.ID,
		&showtime.Showroom.Name,
		&showtime.Showroom.NumRows,
		&showtime.Showroom.NumCols,
		&showtime.Showroom.SeatCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &showtime, nil
}

type PostgresPromotionRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPromotionRepository(db *pgxpool.Pool) *PostgresPromotionRepository {
	return &PostgresPromotionRepository{
		db: db,
	}
}

func (p *PostgresPromotionRepository) GetByCode(ctx context.Context, code string) (*domain.Promotion, error) {
	query := `
		SELECT id, promo_code, discount_percent, start_date, end_date
		FROM promotions
		WHERE UPPER(promo_code) = $1
	`

	var promotion domain.Promotion

	err := p.db.QueryRow(ctx, query, code).Scan(
		&promotion.ID,
		&promotion.Code,
		&promotion.DiscountPercent,
		&promotion.StartDate,
		&promotion.EndDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &promotion, nil
}
