package poller

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Poller runs pollMethod once per interval until its context is cancelled
// or Stop is called. A failed run is logged and does not stop the loop.
type Poller struct {
	name       string
	interval   time.Duration
	clock      clockwork.Clock
	quit       chan struct{}
	pollMethod func(ctx context.Context) error
}

func NewPoller(name string, interval time.Duration, pollMethod func(ctx context.Context) error) *Poller {
	return NewPollerWithClock(name, interval, clockwork.NewRealClock(), pollMethod)
}

func NewPollerWithClock(
	name string, interval time.Duration, clock clockwork.Clock, pollMethod func(ctx context.Context) error,
) *Poller {
	return &Poller{
		name:       name,
		interval:   interval,
		clock:      clock,
		quit:       make(chan struct{}),
		pollMethod: pollMethod,
	}
}

func (p *Poller) Start(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	logger := log.Ctx(ctx).With().Str("poller", p.name).Logger()
	logger.Info().Dur("interval", p.interval).Msg("starting poller")

	for {
		select {
		case <-ticker.Chan():
			if err := p.pollMethod(ctx); err != nil {
				logger.Error().Err(err).Msg("poll failed")
				continue
			}
			logger.Debug().Msg("poll completed")
		case <-ctx.Done():
			logger.Info().Msg("poller stopped: context cancelled")
			return
		case <-p.quit:
			logger.Info().Msg("poller stopped")
			return
		}
	}
}

func (p *Poller) Stop() {
	close(p.quit)
}
