package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/logsink"
	"github.com/NordCoder/uptimed/internal/obs"
)

// CheckSource lists and reads stored checks.
type CheckSource interface {
	ListIDs(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (*check.RawCheck, error)
}

type Usecase struct {
	Checks      CheckSource
	Prober      Prober
	Processor   *Processor
	Logs        check.LogSink
	Clock       check.Clock
	Log         *zap.Logger
	MaxInFlight int
}

type CycleReport struct {
	Listed   int
	Probed   int
	Rejected int
	Failed   int
	Up       int
	Down     int
	Alerts   int
}

type RotationReport struct {
	Streams int `json:"streams"`
	Rotated int `json:"rotated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type checkResult struct {
	probed   bool
	rejected bool
	decision Decision
	err      error
}

var tracer = otel.Tracer("monitor.uc")

// ProbeCycle probes every valid stored check once. Checks are independent:
// one that cannot be read or is rejected by validation never stops the
// others. The returned error joins per-check read failures.
func (u *Usecase) ProbeCycle(ctx context.Context) (CycleReport, error) {
	ctx, span := tracer.Start(ctx, "monitor.probe_cycle")
	defer span.End()
	log := obs.WithTrace(ctx, u.Log)

	ids, err := u.Checks.ListIDs(ctx)
	if err != nil {
		mCheckErrors.WithLabelValues(stageList).Inc()
		span.RecordError(err)
		return CycleReport{}, fmt.Errorf("list checks: %w", err)
	}
	rep := CycleReport{Listed: len(ids)}
	span.SetAttributes(attribute.Int("cycle.listed", len(ids)))
	if len(ids) == 0 {
		log.Debug("no checks to probe")
		return rep, nil
	}

	results := make([]checkResult, len(ids))
	var g errgroup.Group
	if u.MaxInFlight > 0 {
		g.SetLimit(u.MaxInFlight)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = u.runCheck(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	var errs error
	for _, r := range results {
		switch {
		case r.err != nil:
			rep.Failed++
			errs = multierr.Append(errs, r.err)
		case r.rejected:
			rep.Rejected++
		case r.probed:
			rep.Probed++
			if r.decision.State == check.StateUp {
				rep.Up++
			} else {
				rep.Down++
			}
			if r.decision.Alert {
				rep.Alerts++
			}
		}
	}

	span.SetAttributes(
		attribute.Int("cycle.probed", rep.Probed),
		attribute.Int("cycle.rejected", rep.Rejected),
		attribute.Int("cycle.failed", rep.Failed),
	)
	return rep, errs
}

// RunCheck reads, validates, probes and processes a single check.
func (u *Usecase) RunCheck(ctx context.Context, id string) (Decision, error) {
	r := u.runCheck(ctx, id)
	if r.err != nil {
		return Decision{}, r.err
	}
	if r.rejected {
		return Decision{}, fmt.Errorf("check %s: rejected", id)
	}
	return r.decision, nil
}

func (u *Usecase) runCheck(ctx context.Context, id string) checkResult {
	ctx, sp := tracer.Start(ctx, "monitor.check",
		trace.WithAttributes(attribute.String("check.id", id)),
	)
	defer sp.End()
	log := obs.WithTrace(ctx, u.Log).With(zap.String("check_id", id))

	raw, err := u.Checks.Get(ctx, id)
	var rej *check.Rejection
	switch {
	case errors.As(err, &rej):
		mCheckErrors.WithLabelValues(stageValidate).Inc()
		log.Warn("check record rejected", zap.String("field", rej.Field), zap.String("reason", rej.Reason))
		sp.SetAttributes(attribute.String("check.status", "rejected"))
		return checkResult{rejected: true}
	case err != nil:
		mCheckErrors.WithLabelValues(stageRead).Inc()
		log.Error("read check", zap.Error(err))
		sp.RecordError(err)
		return checkResult{err: fmt.Errorf("read check %s: %w", id, err)}
	}

	c, err := Validate(raw)
	if err != nil {
		mCheckErrors.WithLabelValues(stageValidate).Inc()
		log.Warn("check data invalid, skipping", zap.Error(err))
		sp.SetAttributes(attribute.String("check.status", "rejected"))
		return checkResult{rejected: true}
	}

	start := time.Now()
	out := u.Prober.Probe(ctx, &c)
	mProbeLatency.Observe(time.Since(start).Seconds())

	d := u.Processor.Process(ctx, id, c, out)
	mProbes.WithLabelValues(string(d.State)).Inc()
	sp.SetAttributes(
		attribute.String("check.url", c.Target()),
		attribute.String("check.status", string(d.State)),
		attribute.Bool("check.alert", d.Alert),
	)
	return checkResult{probed: true, decision: d}
}

// RotateLogs archives every live stream and empties it. Streams are handled
// one at a time; an empty stream is skipped and a failed one keeps its
// contents.
func (u *Usecase) RotateLogs(ctx context.Context) (RotationReport, error) {
	ctx, span := tracer.Start(ctx, "monitor.rotate_logs")
	defer span.End()
	log := obs.WithTrace(ctx, u.Log)

	streams, err := u.Logs.List(false)
	if err != nil {
		span.RecordError(err)
		return RotationReport{}, fmt.Errorf("list log streams: %w", err)
	}
	rep := RotationReport{Streams: len(streams)}

	var errs error
	for _, stream := range streams {
		if err := ctx.Err(); err != nil {
			return rep, multierr.Append(errs, err)
		}
		archive := logsink.ArchiveName(stream, u.Clock.Now())
		err := u.Logs.Rotate(stream, archive)
		switch {
		case err == nil:
			rep.Rotated++
			mRotations.WithLabelValues("rotated").Inc()
			log.Debug("log stream rotated", zap.String("stream", stream), zap.String("archive", archive))
		case errors.Is(err, logsink.ErrEmptyStream):
			rep.Skipped++
			mRotations.WithLabelValues("skipped").Inc()
		default:
			rep.Failed++
			mRotations.WithLabelValues("failed").Inc()
			log.Warn("rotate log stream", zap.String("stream", stream), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("rotate %s: %w", stream, err))
		}
	}

	span.SetAttributes(
		attribute.Int("rotate.streams", rep.Streams),
		attribute.Int("rotate.rotated", rep.Rotated),
		attribute.Int("rotate.failed", rep.Failed),
	)
	return rep, errs
}
