package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maruko-pickup/api/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const messageType = "order.confirmation"

// MessageWriter is the subset of *kafka.Writer used by KafkaQueue.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MessageReader is the subset of *kafka.Reader used by Consumer.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter returns an async writer for the notification topic. Write
// failures surface through the completion callback, which logs and counts
// them.
func NewKafkaWriter(brokers []string, topic string, m *metrics.Metrics) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err == nil {
				return
			}
			for _, msg := range msgs {
				m.Notification("enqueue_failed")
				log.Error().Err(err).
					Str("order_number", string(msg.Key)).
					Msg("publish order confirmation")
			}
		},
	}
}

// NewKafkaReader returns a consumer-group reader for the notification topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}

// KafkaQueue publishes messages to a topic keyed by order number.
type KafkaQueue struct {
	w MessageWriter
}

func NewKafkaQueue(w MessageWriter) *KafkaQueue {
	return &KafkaQueue{w: w}
}

// Enqueue implements Queue.
func (q *KafkaQueue) Enqueue(ctx context.Context, msg Message) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return q.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.OrderNumber),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(messageType)},
		},
	})
}

// Close flushes pending writes.
func (q *KafkaQueue) Close() error {
	return q.w.Close()
}

// Consumer reads confirmations from Kafka and delivers them. Offsets are
// committed after delivery succeeds or is abandoned, so a crash mid-retry
// redelivers the message.
type Consumer struct {
	r       MessageReader
	sender  Sender
	policy  RetryPolicy
	metrics *metrics.Metrics
}

func NewConsumer(r MessageReader, sender Sender, policy RetryPolicy, m *metrics.Metrics) *Consumer {
	return &Consumer{r: r, sender: sender, policy: policy.withDefaults(), metrics: m}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		km, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(km.Value, &msg); err != nil {
			c.metrics.Notification("failed")
			log.Error().Err(err).
				Int64("offset", km.Offset).
				Msg("discarding undecodable notification")
		} else if err := deliver(ctx, c.sender, msg, c.policy, c.metrics); err != nil && ctx.Err() != nil {
			// Interrupted mid-retry: leave uncommitted for redelivery.
			return nil
		}

		if err := c.r.CommitMessages(ctx, km); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit message: %w", err)
		}
	}
}
