package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner wraps the cron scheduler so every job runs against the
// process base context and shutdown drains with a bound.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules job under spec. The name only identifies the job in logs.
func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	id, err := r.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if r != nil && r.baseCtx != nil {
			ctx = r.baseCtx
		}
		job(ctx)
	})
	if err != nil {
		return id, err
	}
	if r.logger != nil {
		r.logger.Info("cron job scheduled", zap.String("job", name), zap.String("spec", spec))
	}
	return id, nil
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

// Stop halts scheduling and waits for running jobs to drain, up to wait.
func (r *Runner) Stop(wait time.Duration) {
	ctx := r.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(wait):
		if r.logger != nil {
			r.logger.Warn("cron drain timed out", zap.Duration("wait", wait))
		}
		return
	}
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
