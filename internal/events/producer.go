// Package events publishes app analytics events (auth, cart, checkout) to
// Kafka. Publishing is best effort: a nil producer is a no-op and delivery
// failures are logged, never returned to the business flow.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(address string, log *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(address),
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: w, log: log}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, event map[string]any) {
	if p == nil || p.writer == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("event marshal failed", "topic", topic, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("event publish failed", "topic", topic, "error", err)
	}
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
