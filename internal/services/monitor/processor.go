package monitor

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/obs"
)

// CheckSaver records a probe's result on the stored check. Only state and
// last-checked change; the rest of the record is kept as stored.
type CheckSaver interface {
	SaveOutcome(ctx context.Context, key string, state check.State, lastChecked int64) error
}

// DecideState is up only for an error-free response whose code is in the
// check's success set.
func DecideState(c *check.Check, out check.Outcome) check.State {
	if !out.Failed() && out.ResponseCode != 0 && c.Succeeds(out.ResponseCode) {
		return check.StateUp
	}
	return check.StateDown
}

// AlertWarranted reports a state change on a check that has been probed
// before. First-ever probes never alert.
func AlertWarranted(c *check.Check, next check.State) bool {
	return c.HasBeenChecked() && c.State != next
}

type Decision struct {
	Check     check.Check // the record as persisted (or as it would have been)
	State     check.State
	Alert     bool
	Logged    bool
	Persisted bool
	Notified  bool
}

type Processor struct {
	Checks   CheckSaver
	Logs     check.LogSink
	Notifier check.Notifier
	Clock    check.Clock
	Log      *zap.Logger
}

// Process logs the outcome, stores the new state on the record listed under
// key and alerts the owner when warranted. Failures are logged; none is
// returned.
func (p *Processor) Process(ctx context.Context, key string, c check.Check, out check.Outcome) Decision {
	log := obs.WithTrace(ctx, p.Log).With(zap.String("check_id", c.ID))

	state := DecideState(&c, out)
	alert := AlertWarranted(&c, state)
	now := p.Clock.Now().UnixMilli()

	d := Decision{State: state, Alert: alert}

	if err := p.appendLog(check.LogEntry{Check: c, Outcome: out, State: state, Alert: alert, Time: now}); err != nil {
		mCheckErrors.WithLabelValues(stageLog).Inc()
		log.Error("append check log", zap.Error(err))
	} else {
		d.Logged = true
	}

	updated := c
	updated.State = state
	updated.LastChecked = now
	d.Check = updated

	if err := p.Checks.SaveOutcome(ctx, key, state, now); err != nil {
		mCheckErrors.WithLabelValues(stageSave).Inc()
		log.Error("save check outcome", zap.Error(err))
		return d
	}
	d.Persisted = true

	if !alert {
		log.Debug("no alert warranted", zap.String("state", string(state)))
		return d
	}

	mAlerts.Inc()
	if err := p.Notifier.Send(ctx, updated.UserPhone, check.AlertMessage(&updated)); err != nil {
		mCheckErrors.WithLabelValues(stageNotify).Inc()
		log.Error("alert owner", zap.Error(err))
		return d
	}
	d.Notified = true
	log.Info("owner alerted to state change", zap.String("state", string(state)))
	return d
}

func (p *Processor) appendLog(e check.LogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.Logs.Append(e.Check.ID, b)
}
