// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bartek5186/sheet2woo/internal/engine"
)

// Fetcher is the slice of the sync engine the scheduler drives.
type Fetcher interface {
	Fetch(ctx context.Context) engine.Result
}

// Scheduler runs a background fetch on a fixed interval so the grid
// keeps tracking the store while the operator edits. Pushes stay
// manual - only an explicit action may propagate local changes.
type Scheduler struct {
	log      zerolog.Logger
	eng      Fetcher
	mu       sync.Mutex
	interval time.Duration
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	ticks    uint64
}

func New(log zerolog.Logger, eng Fetcher, interval time.Duration) *Scheduler {
	return &Scheduler{log: log, eng: eng, interval: interval}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.ticks = 0
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.Interval()).Msg("scheduler: start")
	go s.loop(ctx)
	return nil
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
	s.log.Info().Msg("scheduler: stop")
}

// UpdateInterval changes the fetch cadence; the loop picks it up on its
// next tick.
func (s *Scheduler) UpdateInterval(d time.Duration) {
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()
	s.log.Info().Dur("interval", d).Msg("scheduler: interval updated")
}

func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.interval > 0 {
		return s.interval
	}
	return 5 * time.Minute
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	// first fetch right away
	s.tickOnce(ctx)

	current := s.Interval()
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler: loop done")
			return
		case <-ticker.C:
			if next := s.Interval(); next != current {
				current = next
				ticker.Reset(current)
			}
			s.tickOnce(ctx)
		}
	}
}

func (s *Scheduler) tickOnce(ctx context.Context) {
	s.mu.Lock()
	s.ticks++
	n := s.ticks
	s.mu.Unlock()

	res := s.eng.Fetch(ctx)
	if res.Success {
		s.log.Info().Uint64("tick", n).Int("count", res.Count).Msg("scheduler: fetch ok")
	} else {
		s.log.Warn().Uint64("tick", n).Str("reason", res.Message).Msg("scheduler: fetch failed")
	}
}
