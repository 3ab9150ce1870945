package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes_service/internal/dto"
	"notes_service/internal/events"
	"notes_service/internal/kafka"
	"notes_service/internal/redis"
)

func TestActivityHandlers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redis.NewServiceWithClient(client, time.Minute)
	ctx := context.Background()

	consumer := kafka.NewConsumerWithReader(nil, zerolog.Nop())
	register(consumer, newActivityHandlers(cache, zerolog.Nop()))

	noteID, owner := uuid.New(), uuid.New()
	send := func(e *events.NoteEvent) {
		raw, err := json.Marshal(e)
		require.NoError(t, err)
		consumer.Dispatch(ctx, segkafka.Message{Value: raw})
	}

	require.NoError(t, cache.SetPublicPage(ctx, "old-slug", &dto.PublicNote{ID: noteID, Title: "cached"}))

	send(events.NewNoteEvent(events.NoteCreated, noteID, owner, owner, time.Now()))
	changed := events.NewNoteEvent(events.NoteVisibilityChanged, noteID, owner, owner, time.Now())
	changed.PreviousSlug = "old-slug"
	send(changed)

	page, err := cache.GetPublicPage(ctx, "old-slug")
	require.NoError(t, err)
	assert.Nil(t, page)

	trail, err := cache.Activity(ctx, noteID.String(), 0)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, events.NoteVisibilityChanged, trail[0].EventType)

	send(events.NewNoteEvent(events.NoteDeleted, noteID, owner, owner, time.Now()))
	trail, err = cache.Activity(ctx, noteID.String(), 0)
	require.NoError(t, err)
	assert.Empty(t, trail)
}
