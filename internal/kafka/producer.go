package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"notes_service/internal/events"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Events are published inside the request, so writers flush each message
// instead of waiting for the default one-second batch window.
const (
	writerBatchSize    = 1
	writerBatchTimeout = 10 * time.Millisecond
)

type Producer struct {
	activityWriter MessageWriter
	commentWriter  MessageWriter
	log            zerolog.Logger
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              writerBatchSize,
		BatchTimeout:           writerBatchTimeout,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		AllowAutoTopicCreation: true,
	}
}

// NewProducer creates a producer with one writer per topic. Messages are keyed
// by note id so events of one note stay ordered.
func NewProducer(brokers []string, log zerolog.Logger) *Producer {
	return NewProducerWithWriters(
		newWriter(brokers, events.NoteActivityTopic),
		newWriter(brokers, events.NoteCommentsTopic),
		log,
	)
}

func NewProducerWithWriters(activity, comments MessageWriter, log zerolog.Logger) *Producer {
	return &Producer{activityWriter: activity, commentWriter: comments, log: log}
}

// Publish writes event to its topic.
func (p *Producer) Publish(ctx context.Context, event *events.NoteEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.EventType, err)
	}

	writer := p.activityWriter
	if event.Topic() == events.NoteCommentsTopic {
		writer = p.commentWriter
	}

	message := kafka.Message{
		Key:   []byte(event.NoteID),
		Value: value,
		Time:  event.Timestamp,
	}
	if err := writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("publish %s event: %w", event.EventType, err)
	}

	p.log.Debug().
		Str("event", event.EventType).
		Str("note_id", event.NoteID).
		Str("topic", event.Topic()).
		Msg("published note event")
	return nil
}

// Close closes the Kafka writers
func (p *Producer) Close() error {
	return errors.Join(p.activityWriter.Close(), p.commentWriter.Close())
}
