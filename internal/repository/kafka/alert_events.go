package kafka

import (
	"context"
	"time"

	"github.com/NordCoder/uptimed/internal/domain/check"
)

// AlertEvent is the payload published for every state-change alert.
// A downstream SMS relay consumes the topic.
type AlertEvent struct {
	To      string    `json:"to"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// AlertEvents is a check.Notifier that publishes alerts keyed by destination,
// keeping alerts for one phone ordered within a partition.
type AlertEvents struct {
	p   *Producer
	now func() time.Time
}

func NewAlertEvents(p *Producer) *AlertEvents {
	return &AlertEvents{p: p, now: time.Now}
}

var _ check.Notifier = (*AlertEvents)(nil)

func (e *AlertEvents) Send(ctx context.Context, to, message string) error {
	return e.p.PublishJSON(ctx, []byte(to), AlertEvent{
		To:      to,
		Message: message,
		At:      e.now().UTC(),
	})
}
