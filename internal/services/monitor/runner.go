package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
)

// Runner drives the two periodic loops: probe cycles and log rotation.
// Work started by a tick runs in the background, so a slow cycle never
// delays the next one.
type Runner struct {
	Log *zap.Logger
	UC  *Usecase
	Cfg *config.SchedCfg

	wg sync.WaitGroup
}

func New(log *zap.Logger, uc *Usecase, cfg *config.SchedCfg) *Runner {
	return &Runner{Log: log, UC: uc, Cfg: cfg}
}

func (r *Runner) probe(ctx context.Context) {
	start := time.Now()
	mCycles.Inc()
	rep, err := r.UC.ProbeCycle(ctx)
	if err != nil {
		r.Log.Warn("probe cycle errors", zap.Error(err))
	}
	mCycleDur.Observe(time.Since(start).Seconds())
	r.Log.Debug("probe cycle done",
		zap.Int("listed", rep.Listed),
		zap.Int("probed", rep.Probed),
		zap.Int("rejected", rep.Rejected),
		zap.Int("up", rep.Up),
		zap.Int("down", rep.Down),
		zap.Int("alerts", rep.Alerts),
	)
}

func (r *Runner) rotate(ctx context.Context) {
	rep, err := r.UC.RotateLogs(ctx)
	if err != nil {
		r.Log.Warn("log rotation errors", zap.Error(err))
	}
	r.Log.Info("log rotation done",
		zap.Int("streams", rep.Streams),
		zap.Int("rotated", rep.Rotated),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
	)
}

func (r *Runner) spawn(ctx context.Context, fn func(context.Context)) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn(ctx)
	}()
}

// Run fires one rotation and one probe cycle right away, then keeps both
// loops going until ctx is done. In-flight work is awaited before return.
func (r *Runner) Run(ctx context.Context) error {
	probeT := time.NewTicker(r.Cfg.ProbeInterval)
	defer probeT.Stop()
	rotateT := time.NewTicker(r.Cfg.RotateInterval)
	defer rotateT.Stop()

	r.spawn(ctx, r.rotate)
	r.spawn(ctx, r.probe)

	for {
		select {
		case <-ctx.Done():
			r.wg.Wait()
			return ctx.Err()
		case <-probeT.C:
			r.spawn(ctx, r.probe)
		case <-rotateT.C:
			r.spawn(ctx, r.rotate)
		}
	}
}
