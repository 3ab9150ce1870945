package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"notes_service/internal/events"
	"notes_service/internal/kafka"
)

// activityStore is what the handlers need from the Redis service.
type activityStore interface {
	AppendActivity(ctx context.Context, event events.NoteEvent) error
	ClearActivity(ctx context.Context, noteID string) error
	InvalidatePublicPage(ctx context.Context, slug string) error
}

type activityHandlers struct {
	store activityStore
	log   zerolog.Logger
}

func newActivityHandlers(store activityStore, log zerolog.Logger) *activityHandlers {
	return &activityHandlers{store: store, log: log}
}

func register(c *kafka.Consumer, h *activityHandlers) {
	c.RegisterHandler(events.NoteCreated, h.record)
	c.RegisterHandler(events.NoteUpdated, h.recordAndInvalidate)
	c.RegisterHandler(events.NoteVisibilityChanged, h.recordAndInvalidate)
	c.RegisterHandler(events.CommentAdded, h.record)
	c.RegisterHandler(events.NoteDeleted, h.forget)
}

func (h *activityHandlers) record(ctx context.Context, e events.NoteEvent) error {
	if err := h.store.AppendActivity(ctx, e); err != nil {
		return err
	}
	h.log.Debug().Str("event", e.EventType).Str("note_id", e.NoteID).Msg("activity recorded")
	return nil
}

// recordAndInvalidate also drops the page cached under the slug the note had
// before the change.
func (h *activityHandlers) recordAndInvalidate(ctx context.Context, e events.NoteEvent) error {
	if err := h.store.InvalidatePublicPage(ctx, e.PreviousSlug); err != nil {
		return fmt.Errorf("invalidate %s: %w", e.PreviousSlug, err)
	}
	return h.record(ctx, e)
}

func (h *activityHandlers) forget(ctx context.Context, e events.NoteEvent) error {
	if err := h.store.InvalidatePublicPage(ctx, e.PreviousSlug); err != nil {
		return fmt.Errorf("invalidate %s: %w", e.PreviousSlug, err)
	}
	if err := h.store.ClearActivity(ctx, e.NoteID); err != nil {
		return err
	}
	h.log.Info().Str("note_id", e.NoteID).Msg("activity cleared for deleted note")
	return nil
}
