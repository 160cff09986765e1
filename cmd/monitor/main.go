package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/logsink"
	"github.com/NordCoder/uptimed/internal/obs"
	"github.com/NordCoder/uptimed/internal/services/monitor"
	"github.com/NordCoder/uptimed/internal/services/monitor/repo"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("UPTIMED_CONFIG"))
	if err != nil {
		log.Fatal(err)
	}

	l, err := initLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting monitor",
		zap.String("store", cfg.Store.Driver),
		zap.String("notifier", cfg.Notifier.Driver),
		zap.Duration("probe_interval", cfg.Sched.ProbeInterval),
		zap.Duration("rotate_interval", cfg.Sched.RotateInterval),
	)

	otelShutdown, err := initOTel(ctx, cfg)
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	store, err := initStore(ctx, cfg, l)
	if err != nil {
		l.Fatal("store init", zap.Error(err))
	}
	defer store.close()

	sink, err := logsink.New(cfg.Logs.Dir, l)
	if err != nil {
		l.Fatal("log sink init", zap.Error(err))
	}

	notifier, closeNotifier := initNotifier(ctx, cfg, l.With(zap.String("component", "notifier")))
	defer func() { _ = closeNotifier() }()

	ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, map[string]obs.HealthFunc{
		"store": store.ping,
	}, l)

	// wiring
	clock := systemClock{}
	checks := repo.CheckRepo{R: store}
	ucLog := l.With(zap.String("component", "monitor"))
	uc := &monitor.Usecase{
		Checks: checks,
		Prober: monitor.HTTPProber{
			Client:    monitor.NewHTTPClient(cfg.HTTP),
			UserAgent: cfg.HTTP.UserAgent,
		},
		Processor: &monitor.Processor{
			Checks:   checks,
			Logs:     sink,
			Notifier: notifier,
			Clock:    clock,
			Log:      ucLog,
		},
		Logs:        sink,
		Clock:       clock,
		Log:         ucLog,
		MaxInFlight: cfg.Sched.MaxInFlight,
	}
	runner := monitor.New(ucLog, uc, &cfg.Sched)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()
	l.Info("monitor started")

	select {
	case <-ctx.Done():
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		l.Error("runner error", zap.Error(err))
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
