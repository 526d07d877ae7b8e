package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// handlerAttempts bounds how often one message is handed to the handler
// before it is dead-lettered and committed.
const handlerAttempts = 3

// Handler processes one decoded event.
type Handler func(ctx context.Context, e *Event) error

// ConsumerConfig holds reader settings for one consumer group.
type ConsumerConfig struct {
	Brokers  []string
	GroupID  string
	Topics   []string
	MinBytes int
	MaxBytes int
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type deadLetterPublisher interface {
	Publish(ctx context.Context, msg kafka.Message, cause error, group string) error
}

// Consumer feeds messages from a consumer group to a Handler, committing each
// message once it was handled or given up on.
type Consumer struct {
	reader    messageReader
	group     string
	handler   Handler
	dlq       deadLetterPublisher
	backoff   time.Duration
	logger    *slog.Logger
	closeOnce sync.Once
}

// NewConsumer subscribes cfg.GroupID to cfg.Topics.
func NewConsumer(cfg ConsumerConfig, handler Handler, logger *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
	})
	return newConsumer(r, cfg.GroupID, handler, logger)
}

func newConsumer(r messageReader, group string, handler Handler, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:  r,
		group:   group,
		handler: handler,
		backoff: 100 * time.Millisecond,
		logger:  logger,
	}
}

// WithDLQ sends messages that fail every attempt to dlq.
func (c *Consumer) WithDLQ(dlq *DLQProducer) *Consumer {
	c.dlq = dlq
	return c
}

// Start consumes until ctx is canceled, then closes the reader.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer started", slog.String("group", c.group))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopping", slog.String("group", c.group))
				return c.Close()
			}
			c.logger.Error("fetch message failed", slog.String("error", err.Error()))
			continue
		}
		if err := c.process(ctx, msg); err != nil {
			return c.Close()
		}
	}
}

// process handles and commits msg. An error means ctx ended between attempts
// and msg was left uncommitted for redelivery.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	e, err := DecodeEvent(msg.Value)
	if err != nil {
		c.logger.Error("malformed message",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
		c.count(msg, outcomeMalformed)
		c.deadLetter(ctx, msg, err)
		c.commit(ctx, msg)
		return nil
	}

	handlerCtx := extractTraceContext(ctx, &msg)
	start := time.Now()
	err = c.attempt(ctx, handlerCtx, msg, e)
	consumeDuration.WithLabelValues(msg.Topic, c.group).Observe(time.Since(start).Seconds())
	if ctx.Err() != nil && err != nil {
		return ctx.Err()
	}

	if err != nil {
		c.logger.Error("giving up on event",
			slog.String("event_id", e.EventID),
			slog.String("event_type", e.EventType),
			slog.String("aggregate_id", e.AggregateID),
			slog.String("error", err.Error()),
		)
		c.count(msg, outcomeFailed)
		c.deadLetter(ctx, msg, err)
	} else {
		c.count(msg, outcomeProcessed)
	}
	c.commit(ctx, msg)
	return nil
}

// attempt runs the handler up to handlerAttempts times with a linearly growing
// pause between tries.
func (c *Consumer) attempt(ctx, handlerCtx context.Context, msg kafka.Message, e *Event) error {
	var err error
	for n := 1; n <= handlerAttempts; n++ {
		if err = c.handler(handlerCtx, e); err == nil {
			return nil
		}
		c.logger.Warn("event handler failed",
			slog.String("event_id", e.EventID),
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Int("attempt", n),
			slog.String("error", err.Error()),
		)
		if n == handlerAttempts {
			break
		}
		t := time.NewTimer(time.Duration(n) * c.backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

func (c *Consumer) count(msg kafka.Message, outcome string) {
	consumedMessages.WithLabelValues(msg.Topic, c.group, outcome).Inc()
}

func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) {
	if c.dlq == nil {
		return
	}
	if err := c.dlq.Publish(ctx, msg, cause, c.group); err == nil {
		c.count(msg, outcomeDeadLettered)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("commit failed",
			slog.String("topic", msg.Topic),
			slog.Int64("offset", msg.Offset),
			slog.String("error", err.Error()),
		)
	}
}

// Close closes the reader once; later calls return nil.
func (c *Consumer) Close() error {
	var err error
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}
