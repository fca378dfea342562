package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper drops expired entries from an in-process store.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps in-memory limiter windows and cached results.
type Janitor struct {
	sweepers map[string]Sweeper
	interval time.Duration
	logger   *slog.Logger
}

func NewJanitor(interval time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		sweepers: map[string]Sweeper{},
		interval: interval,
		logger:   logger,
	}
}

// Register adds a store under name. Nil stores are ignored.
func (j *Janitor) Register(name string, s Sweeper) *Janitor {
	if s != nil {
		j.sweepers[name] = s
	}
	return j
}

func (j *Janitor) Start(ctx context.Context) {
	if len(j.sweepers) == 0 {
		return
	}
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.RunOnce()
		}
	}
}

// RunOnce sweeps every registered store and returns the number of entries removed.
func (j *Janitor) RunOnce() int {
	total := 0
	for name, s := range j.sweepers {
		n := s.Sweep()
		if n > 0 {
			j.logger.Debug("swept expired entries", "store", name, "removed", n)
		}
		total += n
	}
	return total
}
