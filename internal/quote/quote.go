package quote

import (
	"context"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/pricing"
	"github.com/metinatakli/cinex-booking/internal/seatmap"
	"golang.org/x/sync/errgroup"
)

// Preview is a price quote plus the seats of the selection that could not be
// held right now. It reserves nothing.
type Preview struct {
	Showtime         *domain.Showtime
	Quote            *pricing.Quote
	UnavailableSeats []domain.SeatID
}

type Service struct {
	showtimes domain.ShowtimeRepository
	ledger    seatmap.OccupancyReader
	engine    *pricing.Engine
	clock     func() time.Time
}

func NewService(
	showtimes domain.ShowtimeRepository,
	ledger seatmap.OccupancyReader,
	engine *pricing.Engine,
	clock func() time.Time) *Service {

	if clock == nil {
		clock = time.Now
	}

	return &Service{
		showtimes: showtimes,
		ledger:    ledger,
		engine:    engine,
		clock:     clock,
	}
}

func (s *Service) Preview(
	ctx context.Context,
	showtimeID int,
	tickets []domain.TicketRequest,
	promoCode *string) (*Preview, error) {

	showtime, err := s.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	selection := make([]domain.SeatID, len(tickets))
	for i, t := range tickets {
		selection[i] = t.SeatID
	}

	err = seatmap.ValidateSelection(showtime.Showroom, selection)
	if err != nil {
		return nil, err
	}

	var (
		quote     *pricing.Quote
		occupancy domain.Occupancy
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		quote, err = s.engine.Quote(gctx, tickets, promoCode, s.clock())
		return err
	})

	g.Go(func() error {
		var err error
		occupancy, err = s.ledger.Occupancy(gctx, showtimeID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	unavailable := make([]domain.SeatID, 0)
	for _, seat := range selection {
		if occupancy.Status(seat) != domain.SeatAvailable {
			unavailable = append(unavailable, seat)
		}
	}
	domain.SortSeats(unavailable)

	return &Preview{
		Showtime:         showtime,
		Quote:            quote,
		UnavailableSeats: unavailable,
	}, nil
}
