package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"notes_service/internal/models"
	"notes_service/pkg/apperrors"
)

func TestResolve(t *testing.T) {
	owner, editor, viewer, stranger := uuid.New(), uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name   string
		facts  Facts
		caller uuid.UUID
		want   Role
	}{
		{"owner of private note", Facts{OwnerID: owner}, owner, RoleOwner},
		{"owner of public note", Facts{OwnerID: owner, IsPublic: true}, owner, RoleOwner},
		{"editor collaborator", Facts{OwnerID: owner, Collaborator: &models.NoteCollaborator{UserID: editor, Role: models.CollaboratorEditor}}, editor, RoleEditor},
		{"viewer collaborator", Facts{OwnerID: owner, Collaborator: &models.NoteCollaborator{UserID: viewer, Role: models.CollaboratorViewer}}, viewer, RoleViewer},
		{"collaborator row of someone else", Facts{OwnerID: owner, Collaborator: &models.NoteCollaborator{UserID: editor, Role: models.CollaboratorEditor}}, stranger, RoleNone},
		{"stranger on public note", Facts{OwnerID: owner, IsPublic: true}, stranger, RoleViewer},
		{"anonymous on public note", Facts{OwnerID: owner, IsPublic: true}, Anonymous, RoleViewer},
		{"stranger on private note", Facts{OwnerID: owner}, stranger, RoleNone},
		{"anonymous on private note", Facts{OwnerID: owner}, Anonymous, RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.facts, tt.caller))
		})
	}
}

func TestDecisionTable(t *testing.T) {
	want := map[Role]map[Action]bool{
		RoleOwner:  {ActionView: true, ActionEdit: true, ActionDelete: true, ActionComment: true, ActionChangeVisibility: true},
		RoleEditor: {ActionView: true, ActionEdit: true, ActionDelete: false, ActionComment: true, ActionChangeVisibility: false},
		RoleViewer: {ActionView: true, ActionEdit: false, ActionDelete: false, ActionComment: true, ActionChangeVisibility: false},
		RoleNone:   {ActionView: false, ActionEdit: false, ActionDelete: false, ActionComment: false, ActionChangeVisibility: false},
	}
	for role, actions := range want {
		for action, allowed := range actions {
			assert.Equal(t, allowed, role.Allows(action), "%s %s", role, action)
		}
	}
}

func TestAuthorize(t *testing.T) {
	user := uuid.New()

	assert.NoError(t, Authorize(RoleViewer, Anonymous, ActionView))
	assert.True(t, errors.Is(Authorize(RoleViewer, Anonymous, ActionComment), apperrors.ErrUnauthenticated))
	assert.True(t, errors.Is(Authorize(RoleNone, Anonymous, ActionView), apperrors.ErrUnauthenticated))

	assert.NoError(t, Authorize(RoleViewer, user, ActionComment))
	assert.True(t, errors.Is(Authorize(RoleViewer, user, ActionEdit), apperrors.ErrForbidden))
	assert.True(t, errors.Is(Authorize(RoleEditor, user, ActionDelete), apperrors.ErrForbidden))
	assert.True(t, errors.Is(Authorize(RoleEditor, user, ActionChangeVisibility), apperrors.ErrForbidden))
	assert.True(t, errors.Is(Authorize(RoleNone, user, ActionView), apperrors.ErrForbidden))
}
