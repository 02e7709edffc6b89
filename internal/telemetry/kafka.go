// v0
// internal/telemetry/kafka.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"it.uniroma2.dicii/nrg-champ/venting-controller/internal/circuitbreaker"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSink publishes records as JSON on <prefix>.<zoneId>, keyed by zone.
type KafkaSink struct {
	lg     *slog.Logger
	topic  string
	raw    *kafka.Writer
	writer messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

// NewKafkaSink wraps a writer for topic in the breaker from the CB_* environment.
func NewKafkaSink(brokers []string, prefix, zoneID string, lg *slog.Logger) (*KafkaSink, error) {
	if lg == nil {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	topic := prefix + "." + zoneID
	kb, err := circuitbreaker.NewKafkaBreakerFromEnv("venting-kafka-writer", nil, lg)
	if err != nil {
		return nil, fmt.Errorf("kafka breaker: %w", err)
	}
	raw := NewKafkaWriter(brokers, topic)
	lg.Info("kafka writer ready", "topic", topic, "brokers", brokers, "breaker", kb.Enabled())
	return &KafkaSink{lg: lg, topic: topic, raw: raw, writer: circuitbreaker.NewCBKafkaWriter(raw, kb)}, nil
}

func (k *KafkaSink) Topic() string { return k.topic }

func (k *KafkaSink) Publish(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	msg := kafka.Message{Key: []byte(rec.ZoneID), Value: b, Time: rec.Timestamp}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", k.topic, err)
	}
	k.lg.Debug("published", "topic", k.topic, "step", rec.Step)
	return nil
}

func (k *KafkaSink) Close() error {
	if k.raw == nil {
		return nil
	}
	return k.raw.Close()
}
