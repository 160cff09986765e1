// Package notify holds check.Notifier implementations other than the kafka
// alert publisher.
package notify

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

// Log only records alerts. It is the default when no transport is configured.
type Log struct {
	log *zap.Logger
}

func NewLog(l *zap.Logger) *Log {
	return &Log{log: l.With(zap.String("component", "notify.log"))}
}

func (n *Log) Send(_ context.Context, to, message string) error {
	n.log.Info("alert", zap.String("to", to), zap.String("message", message))
	return nil
}

// Multi sends to every notifier and reports all failures together.
type Multi []check.Notifier

func (m Multi) Send(ctx context.Context, to, message string) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Send(ctx, to, message))
	}
	return err
}

var (
	_ check.Notifier = (*Log)(nil)
	_ check.Notifier = Multi(nil)
)
