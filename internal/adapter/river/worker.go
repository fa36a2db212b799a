package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/societyq/societyq/internal/domain"
)

// Router resolves an envelope into transport deliveries. Implemented by
// app.Router.
type Router interface {
	Route(ctx context.Context, env domain.Envelope) error
}

// NoticeSweeper retires expired notices. Implemented by the sqlite notice
// repository and by app.NoticeService.
type NoticeSweeper interface {
	DeactivateExpired(ctx context.Context) (int, error)
}

// DeliveryWorker pushes queued envelopes through the router. A transport
// failure is logged and swallowed: notifications are best-effort and a
// retry storm against a dead broker helps nobody.
type DeliveryWorker struct {
	river.WorkerDefaults[DeliveryJobArgs]

	router Router
}

// NewDeliveryWorker creates a worker delivering through the given router.
func NewDeliveryWorker(router Router) *DeliveryWorker {
	return &DeliveryWorker{router: router}
}

// Work delivers a single envelope.
func (w *DeliveryWorker) Work(ctx context.Context, job *river.Job[DeliveryJobArgs]) error {
	env := job.Args.Envelope
	if err := w.router.Route(ctx, env); err != nil {
		slog.WarnContext(ctx, "notification delivery failed",
			"event", env.Type,
			"audience", env.Audience,
			"job_id", job.ID,
			"attempt", job.Attempt,
			"error", err,
		)
		return nil
	}
	return nil
}

// SweepWorker runs the daily notice-expiry sweep.
type SweepWorker struct {
	river.WorkerDefaults[SweepJobArgs]

	sweeper NoticeSweeper
}

// NewSweepWorker creates a worker over the given sweeper.
func NewSweepWorker(sweeper NoticeSweeper) *SweepWorker {
	return &SweepWorker{sweeper: sweeper}
}

// Work deactivates expired notices and logs how many were touched.
func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepJobArgs]) error {
	n, err := w.sweeper.DeactivateExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.InfoContext(ctx, "expired notices deactivated",
			"count", n,
			"job_id", job.ID,
		)
	}
	return nil
}
