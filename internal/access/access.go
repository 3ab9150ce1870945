// Package access resolves a caller's role on a note and decides which
// operations that role may perform.
package access

import (
	"github.com/google/uuid"

	"notes_service/internal/models"
	"notes_service/pkg/apperrors"
)

// Anonymous is the caller identity of a request without credentials.
var Anonymous = uuid.Nil

// Role is the caller's relation to a note.
type Role string

const (
	RoleNone   Role = "none"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

// Action is an operation gated by the resolver.
type Action string

const (
	ActionView             Action = "view"
	ActionEdit             Action = "edit"
	ActionDelete           Action = "delete"
	ActionComment          Action = "comment"
	ActionChangeVisibility Action = "change_visibility"
)

// Facts is what the resolver needs to know about a note for one caller.
// Collaborator is the caller's collaborator row, if any.
type Facts struct {
	OwnerID      uuid.UUID
	IsPublic     bool
	Collaborator *models.NoteCollaborator
}

// Resolve computes the role of caller on the note described by f.
func Resolve(f Facts, caller uuid.UUID) Role {
	if caller != Anonymous {
		if caller == f.OwnerID {
			return RoleOwner
		}
		if f.Collaborator != nil && f.Collaborator.UserID == caller {
			if f.Collaborator.Role == models.CollaboratorEditor {
				return RoleEditor
			}
			return RoleViewer
		}
	}
	if f.IsPublic {
		return RoleViewer
	}
	return RoleNone
}

// Allows reports whether role may perform action. Comment additionally
// requires an authenticated caller, which Authorize checks.
func (r Role) Allows(action Action) bool {
	switch action {
	case ActionView, ActionComment:
		return r != RoleNone
	case ActionEdit:
		return r == RoleOwner || r == RoleEditor
	case ActionDelete, ActionChangeVisibility:
		return r == RoleOwner
	}
	return false
}

// Authorize returns nil when caller, holding role, may perform action.
// Anonymous callers get ErrUnauthenticated for anything they cannot do;
// signed-in callers get ErrForbidden.
func Authorize(role Role, caller uuid.UUID, action Action) error {
	if caller == Anonymous && action != ActionView {
		return apperrors.Unauthenticated("AUTH_REQUIRED", "authentication required")
	}
	if role.Allows(action) {
		return nil
	}
	if caller == Anonymous {
		return apperrors.Unauthenticated("AUTH_REQUIRED", "authentication required")
	}
	return apperrors.Forbidden(forbiddenCode[action], forbiddenMessage[action])
}

var forbiddenCode = map[Action]string{
	ActionView:             "NOTE_VIEW_DENIED",
	ActionEdit:             "NOTE_EDIT_DENIED",
	ActionDelete:           "NOTE_DELETE_DENIED",
	ActionComment:          "NOTE_COMMENT_DENIED",
	ActionChangeVisibility: "NOTE_SHARE_DENIED",
}

var forbiddenMessage = map[Action]string{
	ActionView:             "you don't have access to this note",
	ActionEdit:             "you don't have write access to this note",
	ActionDelete:           "only the owner can delete this note",
	ActionComment:          "you can't comment on this note",
	ActionChangeVisibility: "only the owner can change sharing",
}
