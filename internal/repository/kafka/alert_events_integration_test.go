//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func readOne(t *testing.T, bootstrap, topic, group string, timeout time.Duration) (kafka.Message, bool) {
	t.Helper()
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{bootstrap},
		GroupID:     group,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer r.Close()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	msg, err := r.ReadMessage(ctx)
	if err != nil {
		return kafka.Message{}, false
	}
	return msg, true
}

func TestAlertEvents_PublishesToBroker(t *testing.T) {
	bootstrap := getenv("IT_BOOTSTRAP", "127.0.0.1:19092")
	topic := fmt.Sprintf("uptimed.alerts.it.%d", time.Now().UnixNano())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	prod := BootstrapProducer(ctx, ProducerConfig{Brokers: []string{bootstrap}, Topic: topic}, zap.NewNop())
	defer func() { _ = prod.Close() }()

	msg := "Alert: Your check for GET http://example.com is currently up"
	require.NoError(t, NewAlertEvents(prod).Send(ctx, "5551234567", msg))

	got, ok := readOne(t, bootstrap, topic, topic+"-reader", 30*time.Second)
	require.True(t, ok, "no alert event on %s", topic)
	assert.Equal(t, "5551234567", string(got.Key))

	var ev AlertEvent
	require.NoError(t, json.Unmarshal(got.Value, &ev))
	assert.Equal(t, msg, ev.Message)
	assert.Equal(t, "5551234567", ev.To)
}
