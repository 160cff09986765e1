package notify

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

var (
	deliveryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "uptimed_alert_delivery_seconds",
		Help:    "Alert delivery latency per channel.",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	deliveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptimed_alert_delivery_errors_total",
		Help: "Alerts the channel failed to deliver.",
	}, []string{"channel"})
)

// Instrumented wraps a delivery channel with a span and per-channel metrics.
// Each alert is attempted exactly once; a failure is returned as is.
type Instrumented struct {
	Channel string
	Next    check.Notifier
}

var _ check.Notifier = Instrumented{}

func Instrument(channel string, n check.Notifier) Instrumented {
	return Instrumented{Channel: channel, Next: n}
}

func (r Instrumented) Send(ctx context.Context, to, message string) error {
	ctx, span := otel.Tracer("notify").Start(ctx, "notify.send",
		trace.WithAttributes(attribute.String("notify.channel", r.Channel)),
	)
	defer span.End()

	start := time.Now()
	err := r.Next.Send(ctx, to, message)
	deliveryLatency.WithLabelValues(r.Channel).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		deliveryErrors.WithLabelValues(r.Channel).Inc()
	}
	return err
}
