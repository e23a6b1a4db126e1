package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/contact-verifier/internal/config"
	"github.com/contact-verifier/internal/domain"
	"github.com/segmentio/kafka-go"
)

const handleTimeout = 30 * time.Second

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type notificationHandler interface {
	HandleRaw(ctx context.Context, raw []byte) error
}

// Consumer reads engages notifications from Kafka and hands them to a handler.
// Offsets are committed after handling whether or not it succeeded.
type Consumer struct {
	reader  messageReader
	handler notificationHandler
}

// NewConsumer creates a consumer-group reader for cfg.Topic.
// Call Close when shutting down.
func NewConsumer(cfg config.Kafka, h notificationHandler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka brokers and topic are required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  1 * time.Second,
	})
	return newConsumer(reader, h), nil
}

func newConsumer(r messageReader, h notificationHandler) *Consumer {
	return &Consumer{reader: r, handler: h}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch notification: %w", err)
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("commit notification offset failed", "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	hctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	err := c.handler.HandleRaw(hctx, msg.Value)
	var de *domain.DecodeError
	switch {
	case err == nil:
	case errors.As(err, &de):
		slog.Warn("ignoring notification", "partition", msg.Partition, "offset", msg.Offset, "err", err)
	default:
		slog.Error("handling notification failed", "partition", msg.Partition, "offset", msg.Offset, "err", err)
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
