package models

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"ownerId"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Color     string    `gorm:"size:64;not null" json:"color"`
	IsPublic  bool      `gorm:"not null;default:false" json:"isPublic"`
	CreatedAt time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false;index" json:"updatedAt"`
	UpdatedBy uuid.UUID `gorm:"type:uuid;not null" json:"updatedBy"`

	PublicLink    *NotePublicLink    `gorm:"foreignKey:NoteID" json:"publicLink,omitempty"`
	Collaborators []NoteCollaborator `gorm:"foreignKey:NoteID" json:"collaborators,omitempty"`

	// CommentCount is filled by listing queries only.
	CommentCount int64 `gorm:"->;-:migration" json:"-"`
}

// NotePublicLink exists only while the note is public.
type NotePublicLink struct {
	NoteID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"noteId"`
	Slug      string    `gorm:"size:32;not null;uniqueIndex" json:"slug"`
	CreatedAt time.Time `json:"createdAt"`

	Note *Note `gorm:"foreignKey:NoteID" json:"-"`
}

// NoteCollaborator exists only while the note is shared in team mode.
type NoteCollaborator struct {
	NoteID    uuid.UUID        `gorm:"type:uuid;primaryKey" json:"noteId"`
	UserID    uuid.UUID        `gorm:"type:uuid;primaryKey" json:"userId"`
	Role      CollaboratorRole `gorm:"size:16;not null" json:"role"`
	CreatedAt time.Time        `json:"createdAt"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// Comment is append-only; rows go away only with their note.
type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"noteId"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"authorId"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime:false;index" json:"createdAt"`

	Author User `gorm:"foreignKey:AuthorID" json:"-"`
}
