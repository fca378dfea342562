// Package worker runs the background jobs of the gateway process.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
)

type StalePaymentFinder interface {
	FindStalePending(ctx context.Context, method domain.PaymentMethod, createdBefore time.Time, limit int) ([]*domain.Payment, error)
}

type ReconcilerService interface {
	Reconcile(ctx context.Context, p *domain.Payment) (bool, error)
}

type ReconcilerConfig struct {
	Interval   time.Duration
	BatchSize  int
	PendingAge time.Duration
}

// Reconciler asks the gateway about online payments whose callback never
// arrived.
type Reconciler struct {
	repo    StalePaymentFinder
	service ReconcilerService
	cfg     ReconcilerConfig
	logger  *slog.Logger
	now     func() time.Time
}

func NewReconciler(repo StalePaymentFinder, service ReconcilerService, cfg ReconcilerConfig, logger *slog.Logger) *Reconciler {
	if cfg.PendingAge <= 0 {
		cfg.PendingAge = 10 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Reconciler{
		repo:    repo,
		service: service,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

func (r *Reconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.logger.Info("starting background reconciler",
		"interval", r.cfg.Interval,
		"batch_size", r.cfg.BatchSize,
		"pending_age", r.cfg.PendingAge)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping background reconciler")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single reconciliation cycle and returns how many
// payments changed status.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	cutoff := r.now().Add(-r.cfg.PendingAge)
	pending, err := r.repo.FindStalePending(ctx, domain.MethodOpay, cutoff, r.cfg.BatchSize)
	if err != nil {
		r.logger.Error("failed to fetch stale pending payments", "error", err)
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.logger.Info("reconciling stale payments", "count", len(pending))

	changed := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			return changed
		}
		ok, err := r.service.Reconcile(ctx, p)
		if err != nil {
			r.logger.Error("reconciliation failed for payment", "reference", p.ReferenceNumber, "error", err)
			continue
		}
		if ok {
			changed++
			r.logger.Info("reconciled payment", "reference", p.ReferenceNumber)
		}
	}
	return changed
}
