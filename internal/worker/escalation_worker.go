package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/krakatau-dev/helpdesk/internal/observability"
	"github.com/krakatau-dev/helpdesk/internal/service"
)

// EscalationWorker runs the overdue-ticket sweep on an interval.
// Overlapping runs (or a concurrent manual sweep) are safe: marking a
// ticket escalated is guarded at the storage layer, so at most one
// sweep wins each flag.
type EscalationWorker struct {
	escalations *service.EscalationService
	metrics     *observability.Metrics
	logger      *zap.Logger
	interval    time.Duration
}

// NewEscalationWorker constructs the worker.
func NewEscalationWorker(escalations *service.EscalationService, metrics *observability.Metrics, logger *zap.Logger, interval time.Duration) *EscalationWorker {
	return &EscalationWorker{
		escalations: escalations,
		metrics:     metrics,
		logger:      logger,
		interval:    interval,
	}
}

// Run sweeps until the context is cancelled. The first sweep happens
// after one full interval so startup is not penalized.
func (w *EscalationWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("escalation worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("escalation worker stopped")
			return
		case now := <-ticker.C:
			w.sweep(ctx, now.UTC())
		}
	}
}

func (w *EscalationWorker) sweep(ctx context.Context, now time.Time) {
	escalated, err := w.escalations.SweepOverdue(ctx, now)
	if err != nil {
		w.logger.Error("escalation sweep failed", zap.Error(err))
		return
	}
	w.metrics.RecordSweep(len(escalated))
}
