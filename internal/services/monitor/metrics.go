package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageRead     = "read"
	stageValidate = "validate"
	stageLog      = "log"
	stageSave     = "save"
	stageNotify   = "notify"
	stageList     = "list"
)

var (
	mCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uptimed_probe_cycles_total", Help: "Probe cycles started",
	})
	mCycleDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "uptimed_probe_cycle_duration_seconds", Help: "Wall time of a full probe cycle",
		Buckets: prometheus.DefBuckets,
	})
	mProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptimed_probes_total", Help: "Probes by resulting state",
	}, []string{"state"})
	mProbeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "uptimed_probe_latency_seconds", Help: "Single probe latency",
		Buckets: prometheus.DefBuckets,
	})
	mAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uptimed_alerts_total", Help: "Alerts warranted and handed to the notifier",
	})
	mCheckErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptimed_check_errors_total", Help: "Per-check failures by pipeline stage",
	}, []string{"stage"})
	mRotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptimed_log_rotations_total", Help: "Log streams handled by rotation",
	}, []string{"result"})
)
