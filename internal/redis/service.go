package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"notes_service/internal/dto"
	"notes_service/internal/events"
)

const (
	// ActivityLimit caps the per-note activity list.
	ActivityLimit = 100
	ActivityTTL   = 7 * 24 * time.Hour
)

type Service struct {
	client  *redis.Client
	pageTTL time.Duration
}

// NewService connects to Redis and pings it.
func NewService(addr, password string, db int, pageTTL time.Duration) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return NewServiceWithClient(client, pageTTL), nil
}

func NewServiceWithClient(client *redis.Client, pageTTL time.Duration) *Service {
	return &Service{client: client, pageTTL: pageTTL}
}

func publicPageKey(slug string) string {
	return fmt.Sprintf("public:%s", slug)
}

func activityKey(noteID string) string {
	return fmt.Sprintf("note:%s:activity", noteID)
}

// Public Page Cache Methods

// GetPublicPage returns nil on a cache miss.
func (s *Service) GetPublicPage(ctx context.Context, slug string) (*dto.PublicNote, error) {
	data, err := s.client.Get(ctx, publicPageKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get public page %s: %w", slug, err)
	}

	var page dto.PublicNote
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("decode public page %s: %w", slug, err)
	}
	return &page, nil
}

func (s *Service) SetPublicPage(ctx context.Context, slug string, page *dto.PublicNote) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("encode public page %s: %w", slug, err)
	}
	return s.client.Set(ctx, publicPageKey(slug), data, s.pageTTL).Err()
}

func (s *Service) InvalidatePublicPage(ctx context.Context, slug string) error {
	if slug == "" {
		return nil
	}
	return s.client.Del(ctx, publicPageKey(slug)).Err()
}

// Activity Log Methods

// AppendActivity pushes event onto the note's activity list, newest first.
func (s *Service) AppendActivity(ctx context.Context, event events.NoteEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode activity: %w", err)
	}

	key := activityKey(event.NoteID)
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, ActivityLimit-1)
	pipe.Expire(ctx, key, ActivityTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append activity for note %s: %w", event.NoteID, err)
	}
	return nil
}

// Activity returns up to limit entries, newest first.
func (s *Service) Activity(ctx context.Context, noteID string, limit int) ([]events.NoteEvent, error) {
	if limit <= 0 || limit > ActivityLimit {
		limit = ActivityLimit
	}
	raw, err := s.client.LRange(ctx, activityKey(noteID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity for note %s: %w", noteID, err)
	}

	out := make([]events.NoteEvent, 0, len(raw))
	for _, item := range raw {
		var event events.NoteEvent
		if err := json.Unmarshal([]byte(item), &event); err != nil {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

// ClearActivity drops the note's activity list.
func (s *Service) ClearActivity(ctx context.Context, noteID string) error {
	return s.client.Del(ctx, activityKey(noteID)).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
