package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"frichat/internal/observability"
	"frichat/internal/repositories"
)

// Sweeper removes expired pins on a fixed interval. Expired pins are already
// invisible to readers because listing filters on pinned_until, so the sweep
// only reclaims rows.
type Sweeper struct {
	pins     repositories.PinRepository
	interval time.Duration
}

func New(pins repositories.PinRepository, interval time.Duration) *Sweeper {
	return &Sweeper{pins: pins, interval: interval}
}

// Run sweeps once immediately, then on every tick until the context ends.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.pins.DeleteExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("sweep expired pins")
		return
	}
	if removed > 0 {
		observability.AddPinsExpired(removed)
		log.Info().Int64("removed", removed).Msg("swept expired pins")
	}
}
