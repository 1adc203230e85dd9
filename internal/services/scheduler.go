package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/saxenaaman628/org-voting-system/internal/repositories"
)

// Scheduler periodically reconciles election statuses with the clock.
type Scheduler struct {
	repos    *repositories.Repositories
	clock    Clock
	interval time.Duration

	mu      sync.Mutex
	running bool
}

func NewScheduler(repos *repositories.Repositories, interval time.Duration, opts Options) *Scheduler {
	return &Scheduler{repos: repos, clock: opts.clock(), interval: interval}
}

// Sweep applies the time-driven transitions once.
func (s *Scheduler) Sweep(ctx context.Context) (repositories.SweepResult, error) {
	return s.repos.Elections.Sweep(ctx, s.clock())
}

// Run sweeps immediately and then on every tick until ctx is cancelled.
// A second concurrent Run returns at once.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Stopping election scheduler")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

func (s *Scheduler) sweepOnce(ctx context.Context) {
	res, err := s.Sweep(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Election sweep failed: %v", err)
		}
		return
	}
	if res.Total() > 0 {
		log.Printf("Election sweep: %d activated, %d completed, %d expired", res.Activated, res.Completed, res.Expired)
	}
}
