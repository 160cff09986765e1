package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/obs/retry"
)

type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// BootstrapProducer makes sure the alert topic exists before handing out a
// producer. Topic creation failures are logged; the writer can still
// auto-create the topic on first publish.
func BootstrapProducer(ctx context.Context, cfg ProducerConfig, logger *zap.Logger) *Producer {
	err := retry.Do(ctx, func() error {
		return EnsureTopic(ctx, cfg.Brokers, TopicSpec{
			Name:              cfg.Topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
			MaxWait:           5 * time.Second,
		}, logger)
	}, retry.StartupPolicy("kafka_topic", logger))
	if err != nil && logger != nil {
		logger.Warn("alert topic not ensured", zap.String("topic", cfg.Topic), zap.Error(err))
	}
	return NewProducer(cfg.Brokers, cfg.Topic, logger)
}
