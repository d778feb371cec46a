package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration // default 10s
	BatchTimeout time.Duration // default 100ms
}

// Producer is a thin wrapper around segmentio/kafka-go Writer, publishing
// per-tenant sync results for downstream consumers.
type Producer struct {
	w       *kafka.Writer
	timeout time.Duration
}

func NewProducerFromConfig(c Config) *Producer {
	wt := c.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 100 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(c.Brokers...),
		Topic:        c.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: bt,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{w: w, timeout: wt}
}

// PublishJSON marshals v and publishes it keyed by key. The key keeps results
// for one tenant in one partition, so consumers see them in order.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *Producer) Close() error { return p.w.Close() }
