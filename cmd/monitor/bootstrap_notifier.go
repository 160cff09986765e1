package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/NordCoder/uptimed/internal/config/monitor"
	"github.com/NordCoder/uptimed/internal/domain/check"
	"github.com/NordCoder/uptimed/internal/notify"
	kafkaRepo "github.com/NordCoder/uptimed/internal/repository/kafka"
)

// initNotifier picks the alert channel. Every alert is also written to the
// service log so a dropped delivery can be traced.
func initNotifier(ctx context.Context, cfg *config.Config, logger *zap.Logger) (check.Notifier, func() error) {
	logN := notify.NewLog(logger)

	switch cfg.Notifier.Driver {
	case config.NotifierKafka:
		prod := kafkaRepo.BootstrapProducer(ctx, kafkaRepo.ProducerConfig{
			Brokers: cfg.Notifier.Kafka.Brokers,
			Topic:   cfg.Notifier.Kafka.Topic,
		}, logger)
		return notify.Multi{logN, notify.Instrument("kafka", kafkaRepo.NewAlertEvents(prod))}, prod.Close
	case config.NotifierSMTP:
		sms := notify.NewSMSGateway(cfg.Notifier.SMTP, logger)
		return notify.Multi{logN, notify.Instrument("smtp", sms)}, func() error { return nil }
	default:
		return logN, func() error { return nil }
	}
}
