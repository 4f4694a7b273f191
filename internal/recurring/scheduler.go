package recurring

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/munsif3/family-expense-tracker-sub001/internal/store"
)

// Scheduler runs the processor for every household on a fixed interval, so
// due templates materialize even when nobody has the app open.
type Scheduler struct {
	mu         sync.RWMutex
	processor  *Processor
	households *store.HouseholdStore
	interval   time.Duration
	logger     *slog.Logger
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewScheduler(p *Processor, hs *store.HouseholdStore, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		processor:  p,
		households: hs,
		interval:   interval,
		logger:     logger,
	}
}

// Start begins the scheduler loop. The first sweep runs immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.sweep(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	ids, err := s.households.ListIDs()
	if err != nil {
		s.logger.Error("list households", "error", err)
		return
	}

	now := time.Now().UTC()
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		res, err := s.processor.Run(ctx, id, now)
		if err != nil {
			s.logger.Error("process household", "household_id", id, "error", err)
			continue
		}
		if res.Processed > 0 || res.Skipped > 0 {
			s.logger.Info("recurring sweep",
				"household_id", id, "processed", res.Processed, "skipped", res.Skipped)
		}
	}
}
