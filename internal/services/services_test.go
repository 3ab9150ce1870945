package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"notes_service/internal/dto"
	"notes_service/internal/events"
	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/internal/slug"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.NoteEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *events.NoteEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type mapCache struct {
	mu          sync.Mutex
	pages       map[string]dto.PublicNote
	invalidated []string
	// beforeSet runs once ahead of the next SetPublicPage.
	beforeSet func()
}

func newMapCache() *mapCache { return &mapCache{pages: map[string]dto.PublicNote{}} }

func (c *mapCache) GetPublicPage(_ context.Context, slug string) (*dto.PublicNote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pages[slug]; ok {
		return &p, nil
	}
	return nil, nil
}

func (c *mapCache) SetPublicPage(_ context.Context, slug string, page *dto.PublicNote) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[slug] = *page
	return nil
}

func (c *mapCache) InvalidatePublicPage(_ context.Context, slug string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pages, slug)
	c.invalidated = append(c.invalidated, slug)
	return nil
}

type activityStub map[string][]events.NoteEvent

func (a activityStub) Activity(_ context.Context, noteID string, _ int) ([]events.NoteEvent, error) {
	return a[noteID], nil
}

// stepClock advances one second per reading.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type env struct {
	store     *repositories.MemoryStore
	notes     *NoteService
	comments  *CommentService
	publisher *recordingPublisher
	cache     *mapCache
	clock     *stepClock
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		store:     repositories.NewMemoryStore(),
		publisher: &recordingPublisher{},
		cache:     newMapCache(),
		clock:     &stepClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	e.notes = NewNoteService(e.store.Notes(), e.store.Users(), slug.NewGenerator(),
		WithPublisher(e.publisher),
		WithPageCache(e.cache),
		WithClock(e.clock.now),
		WithLogger(zerolog.Nop()),
	)
	e.comments = NewCommentService(e.store.Notes(), e.store.Comments(), e.store.Users(), e.publisher, zerolog.Nop())
	return e
}

func (e *env) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u := models.User{ID: uuid.New(), Email: name + "@example.com", Name: name, PasswordHash: "x"}
	require.NoError(t, e.store.Users().Create(context.Background(), &u))
	return u.ID
}

func (e *env) note(t *testing.T, owner uuid.UUID, title, mode string, invitee *uuid.UUID) *dto.NoteMutation {
	t.Helper()
	res, err := e.notes.Create(context.Background(), owner, dto.CreateNoteReq{Title: title, Visibility: mode, InviteeID: invitee})
	require.NoError(t, err)
	return res
}

func ptr[T any](v T) *T { return &v }
