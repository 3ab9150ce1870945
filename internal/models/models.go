package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultColor is the color tag given to notes created without one.
const DefaultColor = "bg-yellow-200"

// Visibility is the sharing mode of a note.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityTeam    Visibility = "team"
	VisibilityPublic  Visibility = "public"
)

// ParseVisibility accepts the three sharing modes, case-insensitively.
func ParseVisibility(s string) (Visibility, bool) {
	switch v := Visibility(strings.ToLower(strings.TrimSpace(s))); v {
	case VisibilityPrivate, VisibilityTeam, VisibilityPublic:
		return v, true
	}
	return "", false
}

// CollaboratorRole is the role carried by a NoteCollaborator row.
type CollaboratorRole string

const (
	CollaboratorEditor CollaboratorRole = "editor"
	CollaboratorViewer CollaboratorRole = "viewer"
)

// Timestamp returns t in UTC truncated to the precision Postgres stores, so
// values read back compare equal to the ones written.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:150" json:"name"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName falls back to the email when no name was given.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
