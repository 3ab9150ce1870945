package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"notes_service/internal/models"
	"notes_service/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// NoteChanges is a partial update of a note. Nil fields are left as they are;
// UpdatedAt and UpdatedBy are always written.
type NoteChanges struct {
	Title     *string
	Content   *string
	Color     *string
	UpdatedAt time.Time
	UpdatedBy uuid.UUID
}

// NoteRepository stores notes together with their public link and
// collaborator rows. Methods called on the repository handed to a
// Transaction callback run inside that transaction.
type NoteRepository interface {
	Transaction(ctx context.Context, fn func(tx NoteRepository) error) error

	Create(ctx context.Context, note *models.Note) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Note, error)
	Update(ctx context.Context, id uuid.UUID, changes NoteChanges) error
	SetPublic(ctx context.Context, id uuid.UUID, isPublic bool) error
	// Delete removes the note with its comments, public link and collaborators.
	Delete(ctx context.Context, id uuid.UUID) error

	FindCollaborator(ctx context.Context, noteID, userID uuid.UUID) (*models.NoteCollaborator, error)
	// ListCollaborators returns rows oldest first with User loaded; limit <= 0 means all.
	ListCollaborators(ctx context.Context, noteID uuid.UUID, limit int) ([]models.NoteCollaborator, error)
	UpsertCollaborator(ctx context.Context, collaborator *models.NoteCollaborator) error
	DeleteCollaborators(ctx context.Context, noteID uuid.UUID) error

	FindPublicLink(ctx context.Context, noteID uuid.UUID) (*models.NotePublicLink, error)
	// FindPublicLinkBySlug returns the link with Note loaded.
	FindPublicLinkBySlug(ctx context.Context, slug string) (*models.NotePublicLink, error)
	UpsertPublicLink(ctx context.Context, link *models.NotePublicLink) error
	DeletePublicLink(ctx context.Context, noteID uuid.UUID) error

	// ListAccessible returns at most limit notes owned by or shared with userID,
	// ordered by (updated_at DESC, id DESC) and starting strictly after cursor.
	// PublicLink, Collaborators (with User) and CommentCount are loaded.
	ListAccessible(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Note, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// ListByNote returns comments newest first with Author loaded.
	ListByNote(ctx context.Context, noteID uuid.UUID) ([]models.Comment, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Search matches query case-insensitively against name and email.
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}
