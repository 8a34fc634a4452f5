// Package scheduler drives the periodic ledger jobs: treasury rate ingestion
// and the market data sweep that matures bills and settles holdings.
package scheduler

import (
	"context"
	"time"

	"ustbills/internal/logger"
	"ustbills/internal/models"
	"ustbills/internal/services"
)

// DefaultTick is how often the scheduler checks whether a job is due.
const DefaultTick = time.Minute

// Scheduler runs due jobs on every tick. Intervals come from the platform
// config at each tick, so config updates apply without a restart.
type Scheduler struct {
	rates   services.RateServicer
	bills   services.USTBillServicer
	config  services.PlatformConfigServicer
	tick    time.Duration
	timeout time.Duration
	now     func() time.Time

	nextRates time.Time
	nextSweep time.Time
}

// New creates a Scheduler. Both jobs are due on the first tick.
func New(rates services.RateServicer, bills services.USTBillServicer, config services.PlatformConfigServicer, tick, fetchTimeout time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Scheduler{
		rates:   rates,
		bills:   bills,
		config:  config,
		tick:    tick,
		timeout: fetchTimeout,
		now:     time.Now,
	}
}

// Run blocks until ctx is cancelled. It always returns nil so it can share an
// errgroup with the HTTP server.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	logger.Get().Infow("scheduler started", "tick", s.tick.String())
	s.processTasks(ctx)
	for {
		select {
		case <-ticker.C:
			s.processTasks(ctx)
		case <-ctx.Done():
			logger.Get().Infow("scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) processTasks(ctx context.Context) {
	cfg, err := s.config.GetPlatformConfig()
	if err != nil {
		logger.Get().Errorw("scheduler could not read platform config", "error", err)
		return
	}

	now := s.now()
	if !now.Before(s.nextSweep) {
		s.runSweep()
		s.nextSweep = now.Add(sweepInterval(cfg))
	}
	if !now.Before(s.nextRates) {
		s.runRateFetch(ctx)
		s.nextRates = now.Add(rateInterval(cfg))
	}
}

func (s *Scheduler) runSweep() {
	if _, err := s.bills.UpdateMarketData(); err != nil {
		logger.Get().Errorw("scheduled market data sweep failed", "error", err)
	}
}

func (s *Scheduler) runRateFetch(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := s.rates.FetchTreasuryRates(ctx); err != nil {
		logger.Get().Errorw("scheduled treasury rate fetch failed", "error", err)
	}
}

func sweepInterval(cfg *models.PlatformConfig) time.Duration {
	return time.Duration(cfg.YieldDistributionFrequency) * 24 * time.Hour
}

func rateInterval(cfg *models.PlatformConfig) time.Duration {
	return time.Duration(cfg.TreasuryAPIRefreshInterval) * time.Second
}
