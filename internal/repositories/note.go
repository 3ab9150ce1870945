package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"notes_service/internal/models"
	"notes_service/pkg/pagination"
)

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository returns the gorm-backed NoteRepository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Transaction(ctx context.Context, fn func(tx NoteRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&noteRepository{db: tx})
	})
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(note).Error)
}

func (r *noteRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Note, error) {
	var note models.Note
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &note, nil
}

func (r *noteRepository) Update(ctx context.Context, id uuid.UUID, changes NoteChanges) error {
	updates := map[string]interface{}{
		"updated_at": changes.UpdatedAt,
		"updated_by": changes.UpdatedBy,
	}
	if changes.Title != nil {
		updates["title"] = *changes.Title
	}
	if changes.Content != nil {
		updates["content"] = *changes.Content
	}
	if changes.Color != nil {
		updates["color"] = *changes.Color
	}

	res := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) SetPublic(ctx context.Context, id uuid.UUID, isPublic bool) error {
	res := r.db.WithContext(ctx).Model(&models.Note{}).Where("id = ?", id).Update("is_public", isPublic)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)

	if err := db.Where("note_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("note_id = ?", id).Delete(&models.NotePublicLink{}).Error; err != nil {
		return translate(err)
	}
	if err := db.Where("note_id = ?", id).Delete(&models.NoteCollaborator{}).Error; err != nil {
		return translate(err)
	}

	res := db.Where("id = ?", id).Delete(&models.Note{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *noteRepository) FindCollaborator(ctx context.Context, noteID, userID uuid.UUID) (*models.NoteCollaborator, error) {
	var collaborator models.NoteCollaborator
	err := r.db.WithContext(ctx).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		First(&collaborator).Error
	if err != nil {
		return nil, translate(err)
	}
	return &collaborator, nil
}

func (r *noteRepository) ListCollaborators(ctx context.Context, noteID uuid.UUID, limit int) ([]models.NoteCollaborator, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Where("note_id = ?", noteID).
		Order("created_at asc, user_id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var collaborators []models.NoteCollaborator
	if err := q.Find(&collaborators).Error; err != nil {
		return nil, translate(err)
	}
	return collaborators, nil
}

func (r *noteRepository) UpsertCollaborator(ctx context.Context, collaborator *models.NoteCollaborator) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Omit(clause.Associations).
		Create(collaborator).Error)
}

func (r *noteRepository) DeleteCollaborators(ctx context.Context, noteID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&models.NoteCollaborator{}).Error)
}

func (r *noteRepository) FindPublicLink(ctx context.Context, noteID uuid.UUID) (*models.NotePublicLink, error) {
	var link models.NotePublicLink
	if err := r.db.WithContext(ctx).Where("note_id = ?", noteID).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (r *noteRepository) FindPublicLinkBySlug(ctx context.Context, slug string) (*models.NotePublicLink, error) {
	var link models.NotePublicLink
	if err := r.db.WithContext(ctx).Preload("Note").Where("slug = ?", slug).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	if link.Note == nil {
		return nil, ErrNotFound
	}
	return &link, nil
}

func (r *noteRepository) UpsertPublicLink(ctx context.Context, link *models.NotePublicLink) error {
	return translate(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"slug", "created_at"}),
		}).
		Omit(clause.Associations).
		Create(link).Error)
}

func (r *noteRepository) DeletePublicLink(ctx context.Context, noteID uuid.UUID) error {
	return translate(r.db.WithContext(ctx).Where("note_id = ?", noteID).Delete(&models.NotePublicLink{}).Error)
}

func (r *noteRepository) ListAccessible(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Note, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Select("notes.*, (SELECT COUNT(*) FROM comments WHERE comments.note_id = notes.id) AS comment_count").
		Where("(notes.owner_id = ? OR EXISTS (SELECT 1 FROM note_collaborators nc WHERE nc.note_id = notes.id AND nc.user_id = ?))", userID, userID)

	if cursor != nil {
		q = q.Where("(notes.updated_at < ? OR (notes.updated_at = ? AND notes.id < ?))",
			cursor.UpdatedAt, cursor.UpdatedAt, cursor.ID)
	}

	var notes []models.Note
	err := q.Order("notes.updated_at DESC, notes.id DESC").
		Limit(limit).
		Preload("PublicLink").
		Preload("Collaborators", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, user_id asc")
		}).
		Preload("Collaborators.User").
		Find(&notes).Error
	if err != nil {
		return nil, translate(err)
	}
	return notes, nil
}
