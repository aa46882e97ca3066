package ledger

import (
	"context"
	"log/slog"
	"time"
)

type Sweeper struct {
	ledger   *Ledger
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(ledger *Ledger, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting hold sweeper", "interval", s.interval)

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopped hold sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	released, err := s.ledger.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("hold sweep failed", "error", err)
		}
		return
	}

	if released > 0 {
		s.logger.Info("released expired holds", "count", released)
	}
}
