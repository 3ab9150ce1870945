// Package services holds the note, comment and user operations behind the
// HTTP handlers. Every operation takes the caller explicitly; access.Anonymous
// stands for a request without credentials.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes_service/internal/access"
	"notes_service/internal/dto"
	"notes_service/internal/events"
	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/internal/sharing"
	"notes_service/pkg/apperrors"
)

// EventPublisher receives note events after their change has committed.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.NoteEvent) error
}

// PageCache caches rendered public pages by slug.
type PageCache interface {
	GetPublicPage(ctx context.Context, slug string) (*dto.PublicNote, error)
	SetPublicPage(ctx context.Context, slug string, page *dto.PublicNote) error
	InvalidatePublicPage(ctx context.Context, slug string) error
}

// ActivityLog reads the per-note activity trail built by the consumer.
type ActivityLog interface {
	Activity(ctx context.Context, noteID string, limit int) ([]events.NoteEvent, error)
}

var errNoteNotFound = apperrors.NotFound("NOTE_NOT_FOUND", "note not found")

func requireCaller(caller uuid.UUID) error {
	if caller == access.Anonymous {
		return apperrors.Unauthenticated("AUTH_REQUIRED", "authentication required")
	}
	return nil
}

// resolveRole loads the note and the caller's role on it.
func resolveRole(ctx context.Context, notes repositories.NoteRepository, noteID, caller uuid.UUID) (*models.Note, access.Role, error) {
	note, err := notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, access.RoleNone, errNoteNotFound
		}
		return nil, access.RoleNone, fmt.Errorf("load note %s: %w", noteID, err)
	}

	facts := access.Facts{OwnerID: note.OwnerID, IsPublic: note.IsPublic}
	if caller != access.Anonymous && caller != note.OwnerID {
		collaborator, err := notes.FindCollaborator(ctx, noteID, caller)
		switch {
		case err == nil:
			facts.Collaborator = collaborator
		case !errors.Is(err, repositories.ErrNotFound):
			return nil, access.RoleNone, fmt.Errorf("load collaborator: %w", err)
		}
	}
	return note, access.Resolve(facts, caller), nil
}

// visibilityOf derives a note's mode. A mixed state is logged and read as the
// most permissive mode it could be.
func visibilityOf(log zerolog.Logger, note *models.Note, hasLink bool, collaborators int) models.Visibility {
	v, err := sharing.Observe(note.IsPublic, hasLink, collaborators)
	if err == nil {
		return v
	}
	log.Warn().Err(err).Str("note_id", note.ID.String()).Msg("inconsistent sharing rows")
	switch {
	case note.IsPublic:
		return models.VisibilityPublic
	case collaborators > 0:
		return models.VisibilityTeam
	}
	return models.VisibilityPrivate
}

func collaboratorSummaries(rows []models.NoteCollaborator) []dto.CollaboratorSummary {
	out := make([]dto.CollaboratorSummary, 0, len(rows))
	for _, c := range rows {
		out = append(out, dto.CollaboratorSummary{Role: c.Role, User: dto.NewUserSummary(c.User)})
	}
	return out
}

func optionalSlug(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
