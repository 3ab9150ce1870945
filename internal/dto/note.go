package dto

import (
	"time"

	"github.com/google/uuid"

	"notes_service/internal/models"
)

type RegisterReq struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required"`
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type CreateNoteReq struct {
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Color      string     `json:"color"`
	Visibility string     `json:"visibility"`
	InviteeID  *uuid.UUID `json:"inviteeId"`
}

// UpdateNoteReq leaves nil fields untouched. A non-nil Visibility asks for a
// sharing transition.
type UpdateNoteReq struct {
	Title      *string    `json:"title"`
	Content    *string    `json:"content"`
	Color      *string    `json:"color"`
	Visibility *string    `json:"visibility"`
	InviteeID  *uuid.UUID `json:"inviteeId"`
}

type AddCommentReq struct {
	Body string `json:"body"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func NewUserSummary(u models.User) UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.DisplayName()}
}

type AuthResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type CollaboratorSummary struct {
	Role models.CollaboratorRole `json:"role"`
	User UserSummary             `json:"user"`
}

type NoteListItem struct {
	ID            uuid.UUID             `json:"id"`
	Title         string                `json:"title"`
	Content       string                `json:"content"`
	Color         string                `json:"color"`
	UpdatedAt     time.Time             `json:"updatedAt"`
	OwnerID       uuid.UUID             `json:"ownerId"`
	Role          string                `json:"role"`
	Visibility    models.Visibility     `json:"visibility"`
	Slug          *string               `json:"slug,omitempty"`
	Collaborators []CollaboratorSummary `json:"collaborators"`
	CommentsCount int64                 `json:"commentsCount"`
}

type NotePage struct {
	Items      []NoteListItem `json:"items"`
	NextCursor *string        `json:"nextCursor"`
}

// NoteMutation is returned by create and update.
type NoteMutation struct {
	ID         uuid.UUID         `json:"id"`
	Visibility models.Visibility `json:"visibility"`
	Slug       *string           `json:"slug"`
}

type PublicLinkSummary struct {
	Slug string `json:"slug"`
}

type ShareState struct {
	ID            uuid.UUID             `json:"id"`
	IsPublic      bool                  `json:"isPublic"`
	Visibility    models.Visibility     `json:"visibility"`
	PublicLink    *PublicLinkSummary    `json:"publicLink"`
	Collaborators []CollaboratorSummary `json:"collaborators"`
}

type CommentItem struct {
	ID        uuid.UUID   `json:"id"`
	Body      string      `json:"body"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    UserSummary `json:"author"`
}

type PublicNote struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Color     string    `json:"color"`
	UpdatedAt time.Time `json:"updatedAt"`
}
