package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes_service/internal/access"
	"notes_service/internal/dto"
	"notes_service/internal/events"
	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/pkg/apperrors"
)

// MaxCommentLength bounds a comment body, in characters.
const MaxCommentLength = 5000

type CommentService struct {
	notes     repositories.NoteRepository
	comments  repositories.CommentRepository
	users     repositories.UserRepository
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewCommentService(notes repositories.NoteRepository, comments repositories.CommentRepository, users repositories.UserRepository, publisher EventPublisher, log zerolog.Logger) *CommentService {
	return &CommentService{
		notes:     notes,
		comments:  comments,
		users:     users,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// List returns the note's comments newest first. Anonymous callers may read
// comments of public notes.
func (s *CommentService) List(ctx context.Context, caller, noteID uuid.UUID) ([]dto.CommentItem, error) {
	_, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(role, caller, access.ActionView); err != nil {
		return nil, err
	}

	rows, err := s.comments.ListByNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	out := make([]dto.CommentItem, 0, len(rows))
	for _, c := range rows {
		out = append(out, commentItem(c))
	}
	return out, nil
}

// Add appends a comment. The caller must be signed in and able to view the note.
func (s *CommentService) Add(ctx context.Context, caller, noteID uuid.UUID, req dto.AddCommentReq) (*dto.CommentItem, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	note, role, err := resolveRole(ctx, s.notes, noteID, caller)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(role, caller, access.ActionComment); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.InvalidInput("COMMENT_BODY_REQUIRED", "comment must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxCommentLength {
		return nil, apperrors.InvalidInput("COMMENT_TOO_LONG", fmt.Sprintf("comment must be at most %d characters", MaxCommentLength))
	}

	author, err := s.users.FindByID(ctx, caller)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthenticated("UNKNOWN_USER", "signed-in user no longer exists")
		}
		return nil, fmt.Errorf("load author: %w", err)
	}

	comment := &models.Comment{
		ID:        uuid.New(),
		NoteID:    noteID,
		AuthorID:  caller,
		Body:      body,
		CreatedAt: models.Timestamp(s.now()),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errNoteNotFound
		}
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	comment.Author = *author

	if s.publisher != nil {
		event := events.NewNoteEvent(events.CommentAdded, noteID, note.OwnerID, caller, comment.CreatedAt)
		event.CommentID = comment.ID.String()
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("note_id", noteID.String()).Msg("comment event publish failed")
		}
	}

	item := commentItem(*comment)
	return &item, nil
}

func commentItem(c models.Comment) dto.CommentItem {
	return dto.CommentItem{
		ID:        c.ID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
		Author:    dto.NewUserSummary(c.Author),
	}
}
