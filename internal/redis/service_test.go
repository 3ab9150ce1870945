package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes_service/internal/dto"
	"notes_service/internal/events"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewServiceWithClient(client, time.Minute), mr
}

func TestPublicPageCache(t *testing.T) {
	s, mr := newTestService(t)
	ctx := context.Background()

	page, err := s.GetPublicPage(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, page)

	want := &dto.PublicNote{ID: uuid.New(), Title: "Hello", Content: "world", Color: "bg-yellow-200", UpdatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	require.NoError(t, s.SetPublicPage(ctx, "abc", want))

	got, err := s.GetPublicPage(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt))

	mr.FastForward(2 * time.Minute)
	got, err = s.GetPublicPage(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.SetPublicPage(ctx, "abc", want))
	require.NoError(t, s.InvalidatePublicPage(ctx, "abc"))
	assert.False(t, mr.Exists(publicPageKey("abc")))
	assert.NoError(t, s.InvalidatePublicPage(ctx, ""))
}

func TestActivityIsCappedNewestFirst(t *testing.T) {
	s, mr := newTestService(t)
	ctx := context.Background()
	noteID := uuid.New()

	for i := 0; i < ActivityLimit+5; i++ {
		e := events.NewNoteEvent(events.NoteUpdated, noteID, uuid.New(), uuid.New(), time.Now())
		e.Slug = fmt.Sprintf("s%d", i)
		require.NoError(t, s.AppendActivity(ctx, *e))
	}

	all, err := s.Activity(ctx, noteID.String(), 0)
	require.NoError(t, err)
	require.Len(t, all, ActivityLimit)
	assert.Equal(t, fmt.Sprintf("s%d", ActivityLimit+4), all[0].Slug)
	assert.True(t, mr.TTL(activityKey(noteID.String())) > 0)

	few, err := s.Activity(ctx, noteID.String(), 3)
	require.NoError(t, err)
	assert.Len(t, few, 3)

	require.NoError(t, s.ClearActivity(ctx, noteID.String()))
	none, err := s.Activity(ctx, noteID.String(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
