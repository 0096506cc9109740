package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	LetterSent     = "letter.sent"
	LetterClaimed  = "letter.claimed"
	LetterRead     = "letter.read"
	LetterReported = "letter.reported"
)

// Publisher emits domain events for downstream services (notifications,
// moderation dashboards). Publishing is fire-and-forget: failures are logged
// and never surfaced to the caller.
type Publisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	})
	return &Publisher{writer: w, log: log}
}

func (p *Publisher) Publish(ctx context.Context, event string, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		p.log.Errorw("event marshal", "event", event, "err", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(event),
		Value: b,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorw("event publish", "event", event, "err", err)
	}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
