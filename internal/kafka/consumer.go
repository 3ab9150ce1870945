package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"notes_service/internal/events"
)

// EventHandler handles one decoded note event.
type EventHandler func(ctx context.Context, event events.NoteEvent) error

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader   MessageReader
	handlers map[string][]EventHandler
	log      zerolog.Logger
}

// NewConsumer joins groupID on both note topics.
func NewConsumer(brokers []string, groupID string, log zerolog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		GroupTopics: []string{events.NoteActivityTopic, events.NoteCommentsTopic},
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	return NewConsumerWithReader(reader, log)
}

func NewConsumerWithReader(reader MessageReader, log zerolog.Logger) *Consumer {
	return &Consumer{
		reader:   reader,
		handlers: make(map[string][]EventHandler),
		log:      log,
	}
}

// RegisterHandler registers a handler for a specific event type
func (c *Consumer) RegisterHandler(eventType string, handler EventHandler) {
	c.handlers[eventType] = append(c.handlers[eventType], handler)
}

// Start consumes until ctx is cancelled. A message is committed once its
// handlers have run, whether or not they succeeded.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch message: %w", err)
		}

		c.Dispatch(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.Error().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("commit failed")
		}
	}
}

// Dispatch decodes msg and runs the handlers registered for its type.
func (c *Consumer) Dispatch(ctx context.Context, msg kafka.Message) {
	var event events.NoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Warn().Err(err).Str("topic", msg.Topic).Msg("skipping undecodable event")
		return
	}

	for _, handler := range c.handlers[event.EventType] {
		if err := handler(ctx, event); err != nil {
			c.log.Error().Err(err).
				Str("event", event.EventType).
				Str("note_id", event.NoteID).
				Msg("event handler failed")
		}
	}
}

// Close the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
