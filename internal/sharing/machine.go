// Package sharing moves notes between the private, team and public
// visibility modes.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/internal/slug"
	"notes_service/pkg/apperrors"
)

// Repository is the subset of repositories.NoteRepository a transition
// writes through. It must be bound to an open transaction.
type Repository interface {
	SetPublic(ctx context.Context, id uuid.UUID, isPublic bool) error
	DeleteCollaborators(ctx context.Context, noteID uuid.UUID) error
	UpsertCollaborator(ctx context.Context, collaborator *models.NoteCollaborator) error
	FindPublicLink(ctx context.Context, noteID uuid.UUID) (*models.NotePublicLink, error)
	UpsertPublicLink(ctx context.Context, link *models.NotePublicLink) error
	DeletePublicLink(ctx context.Context, noteID uuid.UUID) error
}

// Transition is a requested move to Mode. Invitee only matters for team.
type Transition struct {
	Mode    models.Visibility
	Invitee *uuid.UUID
}

// Result describes the note after a transition.
type Result struct {
	Visibility   models.Visibility
	Slug         string
	PreviousSlug string
}

type Machine struct {
	slugs slug.Generator
	now   func() time.Time
}

func NewMachine(slugs slug.Generator) *Machine {
	return &Machine{slugs: slugs, now: time.Now}
}

// Apply rewrites the link and collaborator rows of noteID for t. Entering
// public always mints a new slug; every other transition is idempotent.
func (m *Machine) Apply(ctx context.Context, repo Repository, noteID uuid.UUID, t Transition) (Result, error) {
	var res Result

	prev, err := repo.FindPublicLink(ctx, noteID)
	switch {
	case err == nil:
		res.PreviousSlug = prev.Slug
	case !errors.Is(err, repositories.ErrNotFound):
		return res, fmt.Errorf("load public link: %w", err)
	}

	switch t.Mode {
	case models.VisibilityPrivate:
		if err := m.clear(ctx, repo, noteID); err != nil {
			return res, err
		}
		res.Visibility = models.VisibilityPrivate

	case models.VisibilityPublic:
		if err := repo.DeleteCollaborators(ctx, noteID); err != nil {
			return res, fmt.Errorf("delete collaborators: %w", err)
		}
		if err := repo.SetPublic(ctx, noteID, true); err != nil {
			return res, fmt.Errorf("set public: %w", err)
		}
		s, err := m.slugs.New()
		if err != nil {
			return res, fmt.Errorf("generate slug: %w", err)
		}
		link := &models.NotePublicLink{NoteID: noteID, Slug: s, CreatedAt: models.Timestamp(m.now())}
		if err := repo.UpsertPublicLink(ctx, link); err != nil {
			return res, fmt.Errorf("upsert public link: %w", err)
		}
		res.Visibility = models.VisibilityPublic
		res.Slug = s

	case models.VisibilityTeam:
		if err := m.clear(ctx, repo, noteID); err != nil {
			return res, err
		}
		res.Visibility = models.VisibilityPrivate
		if t.Invitee != nil {
			collaborator := &models.NoteCollaborator{
				NoteID:    noteID,
				UserID:    *t.Invitee,
				Role:      models.CollaboratorEditor,
				CreatedAt: models.Timestamp(m.now()),
			}
			if err := repo.UpsertCollaborator(ctx, collaborator); err != nil {
				return res, fmt.Errorf("upsert collaborator: %w", err)
			}
			res.Visibility = models.VisibilityTeam
		}

	default:
		return res, apperrors.InvalidInput("INVALID_SHARE_MODE", fmt.Sprintf("unknown share mode %q", t.Mode))
	}

	return res, nil
}

// clear drops the link and every collaborator and marks the note not public.
func (m *Machine) clear(ctx context.Context, repo Repository, noteID uuid.UUID) error {
	if err := repo.DeletePublicLink(ctx, noteID); err != nil {
		return fmt.Errorf("delete public link: %w", err)
	}
	if err := repo.DeleteCollaborators(ctx, noteID); err != nil {
		return fmt.Errorf("delete collaborators: %w", err)
	}
	if err := repo.SetPublic(ctx, noteID, false); err != nil {
		return fmt.Errorf("set private: %w", err)
	}
	return nil
}

// ErrMixedState reports link/collaborator rows that contradict isPublic.
var ErrMixedState = errors.New("note is in a mixed visibility state")

// Observe derives the visibility of a note at rest from its rows.
func Observe(isPublic, hasLink bool, collaborators int) (models.Visibility, error) {
	switch {
	case isPublic && hasLink && collaborators == 0:
		return models.VisibilityPublic, nil
	case !isPublic && !hasLink && collaborators > 0:
		return models.VisibilityTeam, nil
	case !isPublic && !hasLink && collaborators == 0:
		return models.VisibilityPrivate, nil
	}
	return "", fmt.Errorf("%w: isPublic=%t link=%t collaborators=%d", ErrMixedState, isPublic, hasLink, collaborators)
}
