// Package worker runs the background jobs of the licensing service.
package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/licensing/internal/app/service/license"
	"github.com/fatflowers/licensing/pkg/config"
)

// KeyExpirer moves keys whose expiration passed to expired.
type KeyExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int, error)
}

// ExpirySweeper periodically expires keys. It runs one sweep right after
// Start so a restart does not delay overdue keys by a full interval.
type ExpirySweeper struct {
	keys     KeyExpirer
	log      *zap.SugaredLogger
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	lastRun time.Time
}

func NewExpirySweeper(keys KeyExpirer, log *zap.SugaredLogger, interval time.Duration) *ExpirySweeper {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ExpirySweeper{keys: keys, log: log, interval: interval, now: time.Now}
}

// Start launches the sweep loop. Calling it twice is a no-op.
func (s *ExpirySweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Infow("expiry sweeper started", "interval", s.interval)
}

// Stop cancels the loop and waits for a running sweep to finish.
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	s.log.Infow("expiry sweeper stopped")
}

func (s *ExpirySweeper) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce expires every overdue key and returns how many changed.
func (s *ExpirySweeper) RunOnce(ctx context.Context) int {
	now := s.now().UTC()
	n, err := s.keys.ExpireDue(ctx, now)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Errorw("expiry sweep failed", "err", err)
		}
		return n
	}
	s.mu.Lock()
	s.lastRun = now
	s.mu.Unlock()
	if n > 0 {
		s.log.Infow("expired keys", "count", n)
	}
	return n
}

// LastRun is the time of the last successful sweep.
func (s *ExpirySweeper) LastRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func newExpirySweeper(cfg *config.Config, keys *license.Service, log *zap.SugaredLogger) *ExpirySweeper {
	return NewExpirySweeper(keys, log, cfg.Expiry.Interval)
}

func runExpirySweeper(lc fx.Lifecycle, cfg *config.Config, s *ExpirySweeper) {
	if !cfg.Expiry.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(context.Context) error {
			s.Stop()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(newExpirySweeper),
	fx.Invoke(runExpirySweeper),
)
