package sharing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/internal/slug"
	"notes_service/pkg/apperrors"
)

type fixture struct {
	notes   repositories.NoteRepository
	owner   models.User
	invitee models.User
	note    models.Note
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repositories.NewMemoryStore()

	f := &fixture{notes: store.Notes()}
	f.owner = models.User{Email: "owner@example.com", Name: "Owner"}
	f.invitee = models.User{Email: "invitee@example.com", Name: "Invitee"}
	require.NoError(t, store.Users().Create(ctx, &f.owner))
	require.NoError(t, store.Users().Create(ctx, &f.invitee))

	now := models.Timestamp(time.Now())
	f.note = models.Note{OwnerID: f.owner.ID, Title: "n", Color: models.DefaultColor, CreatedAt: now, UpdatedAt: now, UpdatedBy: f.owner.ID}
	require.NoError(t, f.notes.Create(ctx, &f.note))
	return f
}

func (f *fixture) apply(t *testing.T, m *Machine, tr Transition) Result {
	t.Helper()
	var res Result
	err := f.notes.Transaction(context.Background(), func(tx repositories.NoteRepository) error {
		var err error
		res, err = m.Apply(context.Background(), tx, f.note.ID, tr)
		return err
	})
	require.NoError(t, err)
	return res
}

// observe reads the rows back and derives the mode, failing on a mixed state.
func (f *fixture) observe(t *testing.T) (models.Visibility, *models.NotePublicLink, []models.NoteCollaborator) {
	t.Helper()
	ctx := context.Background()
	note, err := f.notes.FindByID(ctx, f.note.ID)
	require.NoError(t, err)
	link, err := f.notes.FindPublicLink(ctx, f.note.ID)
	if errors.Is(err, repositories.ErrNotFound) {
		link, err = nil, nil
	}
	require.NoError(t, err)
	collaborators, err := f.notes.ListCollaborators(ctx, f.note.ID, 0)
	require.NoError(t, err)

	mode, err := Observe(note.IsPublic, link != nil, len(collaborators))
	require.NoError(t, err)
	return mode, link, collaborators
}

func TestEveryTransitionPairLeavesOneState(t *testing.T) {
	modes := []models.Visibility{models.VisibilityPrivate, models.VisibilityTeam, models.VisibilityPublic}
	for _, from := range modes {
		for _, to := range modes {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				f := newFixture(t)
				m := NewMachine(slug.NewGenerator())

				f.apply(t, m, Transition{Mode: from, Invitee: &f.invitee.ID})
				res := f.apply(t, m, Transition{Mode: to, Invitee: &f.invitee.ID})

				mode, link, collaborators := f.observe(t)
				assert.Equal(t, to, mode)
				assert.Equal(t, to, res.Visibility)
				switch to {
				case models.VisibilityPublic:
					require.NotNil(t, link)
					assert.Equal(t, res.Slug, link.Slug)
					assert.Empty(t, collaborators)
				case models.VisibilityTeam:
					assert.Nil(t, link)
					require.Len(t, collaborators, 1)
					assert.Equal(t, f.invitee.ID, collaborators[0].UserID)
					assert.Equal(t, models.CollaboratorEditor, collaborators[0].Role)
				default:
					assert.Nil(t, link)
					assert.Empty(t, collaborators)
				}
			})
		}
	}
}

func TestPublicMintsFreshSlugEachTime(t *testing.T) {
	f := newFixture(t)
	m := NewMachine(slug.NewGenerator())

	seen := map[string]bool{}
	prev := ""
	for i := 0; i < 5; i++ {
		res := f.apply(t, m, Transition{Mode: models.VisibilityPublic})
		assert.Len(t, res.Slug, slug.Length)
		assert.False(t, seen[res.Slug], "slug %q reused", res.Slug)
		assert.Equal(t, prev, res.PreviousSlug)
		seen[res.Slug] = true
		prev = res.Slug
	}

	old := prev
	_, err := f.notes.FindPublicLinkBySlug(context.Background(), old)
	require.NoError(t, err)
	f.apply(t, m, Transition{Mode: models.VisibilityPublic})
	_, err = f.notes.FindPublicLinkBySlug(context.Background(), old)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPrivateClearsLinkAndCollaborators(t *testing.T) {
	f := newFixture(t)
	m := NewMachine(slug.NewGenerator())

	pub := f.apply(t, m, Transition{Mode: models.VisibilityPublic})
	res := f.apply(t, m, Transition{Mode: models.VisibilityPrivate})
	assert.Equal(t, pub.Slug, res.PreviousSlug)
	assert.Empty(t, res.Slug)

	mode, link, collaborators := f.observe(t)
	assert.Equal(t, models.VisibilityPrivate, mode)
	assert.Nil(t, link)
	assert.Empty(t, collaborators)
}

func TestTeamWithoutInviteeIsPrivate(t *testing.T) {
	f := newFixture(t)
	m := NewMachine(slug.NewGenerator())

	f.apply(t, m, Transition{Mode: models.VisibilityTeam, Invitee: &f.invitee.ID})
	res := f.apply(t, m, Transition{Mode: models.VisibilityTeam})
	assert.Equal(t, models.VisibilityPrivate, res.Visibility)

	mode, _, collaborators := f.observe(t)
	assert.Equal(t, models.VisibilityPrivate, mode)
	assert.Empty(t, collaborators)
}

func TestFailedTransitionRollsBack(t *testing.T) {
	f := newFixture(t)
	f.apply(t, NewMachine(slug.NewGenerator()), Transition{Mode: models.VisibilityTeam, Invitee: &f.invitee.ID})

	broken := NewMachine(slug.Func(func() (string, error) { return "", errors.New("entropy exhausted") }))
	err := f.notes.Transaction(context.Background(), func(tx repositories.NoteRepository) error {
		_, err := broken.Apply(context.Background(), tx, f.note.ID, Transition{Mode: models.VisibilityPublic})
		return err
	})
	require.Error(t, err)

	mode, link, collaborators := f.observe(t)
	assert.Equal(t, models.VisibilityTeam, mode)
	assert.Nil(t, link)
	assert.Len(t, collaborators, 1)
}

func TestUnknownModeIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	err := f.notes.Transaction(context.Background(), func(tx repositories.NoteRepository) error {
		_, err := NewMachine(slug.NewGenerator()).Apply(context.Background(), tx, f.note.ID, Transition{Mode: "friends"})
		return err
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestObserve(t *testing.T) {
	tests := []struct {
		isPublic bool
		hasLink  bool
		n        int
		want     models.Visibility
		mixed    bool
	}{
		{false, false, 0, models.VisibilityPrivate, false},
		{false, false, 2, models.VisibilityTeam, false},
		{true, true, 0, models.VisibilityPublic, false},
		{true, false, 0, "", true},
		{false, true, 0, "", true},
		{true, true, 1, "", true},
		{false, true, 1, "", true},
	}
	for _, tt := range tests {
		got, err := Observe(tt.isPublic, tt.hasLink, tt.n)
		if tt.mixed {
			assert.ErrorIs(t, err, ErrMixedState)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
