package repositories

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"notes_service/internal/database"
	"notes_service/internal/models"
	"notes_service/pkg/pagination"
)

// openPostgres runs the migrations against TEST_DATABASE_URL and empties every
// table. Tests using it are skipped when the variable is unset.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, database.Migrate(dsn))
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, db.Exec("TRUNCATE comments, note_collaborators, note_public_links, notes, users CASCADE").Error)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func pgUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{ID: uuid.New(), Email: email, Name: email, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &u))
	return u
}

func pgNote(t *testing.T, db *gorm.DB, owner uuid.UUID, at time.Time) models.Note {
	t.Helper()
	at = models.Timestamp(at)
	n := models.Note{ID: uuid.New(), OwnerID: owner, Title: "t", Color: models.DefaultColor, CreatedAt: at, UpdatedAt: at, UpdatedBy: owner}
	require.NoError(t, NewNoteRepository(db).Create(context.Background(), &n))
	return n
}

func TestPostgresKeysetPagination(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()
	notes := NewNoteRepository(db)
	owner := pgUser(t, db, "owner@example.com")
	reader := pgUser(t, db, "reader@example.com")
	stranger := pgUser(t, db, "stranger@example.com")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var want []models.Note
	for i := 0; i < 4; i++ {
		want = append(want, pgNote(t, db, owner.ID, base.Add(time.Duration(i)*time.Minute)))
	}
	// Two notes share a timestamp so the id breaks the tie.
	want = append(want, pgNote(t, db, owner.ID, base.Add(2*time.Minute)))
	shared := pgNote(t, db, stranger.ID, base.Add(10*time.Minute))
	require.NoError(t, notes.UpsertCollaborator(ctx, &models.NoteCollaborator{NoteID: shared.ID, UserID: owner.ID, Role: models.CollaboratorEditor, CreatedAt: base}))
	want = append(want, shared)
	pgNote(t, db, reader.ID, base)

	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{ID: uuid.New(), NoteID: shared.ID, AuthorID: owner.ID, Body: "hi", CreatedAt: base}))

	sort.Slice(want, func(i, j int) bool {
		return pagination.Less(want[i].UpdatedAt, want[i].ID, want[j].UpdatedAt, want[j].ID)
	})

	const pageSize = 2
	var got []models.Note
	var cursor *pagination.Cursor
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10)
		rows, err := notes.ListAccessible(ctx, owner.ID, cursor, pageSize+1)
		require.NoError(t, err)
		page, next := pagination.Trim(rows, pageSize, func(n models.Note) pagination.Cursor {
			return pagination.Cursor{UpdatedAt: n.UpdatedAt, ID: n.ID}
		})
		got = append(got, page...)
		if next == nil {
			break
		}
		cursor = next
	}

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID, "position %d", i)
		assert.True(t, want[i].UpdatedAt.Equal(got[i].UpdatedAt), "cursor timestamps round-trip")
	}
	for _, n := range got {
		if n.ID == shared.ID {
			assert.Equal(t, int64(1), n.CommentCount)
			require.Len(t, n.Collaborators, 1)
			assert.Equal(t, owner.Email, n.Collaborators[0].User.Email)
		}
	}
}

func TestPostgresUpserts(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()
	notes := NewNoteRepository(db)
	owner := pgUser(t, db, "owner@example.com")
	invitee := pgUser(t, db, "invitee@example.com")
	a := pgNote(t, db, owner.ID, time.Now())
	b := pgNote(t, db, owner.ID, time.Now())

	require.NoError(t, notes.UpsertPublicLink(ctx, &models.NotePublicLink{NoteID: a.ID, Slug: "first", CreatedAt: time.Now()}))
	require.NoError(t, notes.UpsertPublicLink(ctx, &models.NotePublicLink{NoteID: a.ID, Slug: "second", CreatedAt: time.Now()}))
	link, err := notes.FindPublicLink(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", link.Slug)
	_, err = notes.FindPublicLinkBySlug(ctx, "first")
	assert.ErrorIs(t, err, ErrNotFound)

	err = notes.UpsertPublicLink(ctx, &models.NotePublicLink{NoteID: b.ID, Slug: "second", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicate)

	for i := 0; i < 2; i++ {
		require.NoError(t, notes.UpsertCollaborator(ctx, &models.NoteCollaborator{NoteID: a.ID, UserID: invitee.ID, Role: models.CollaboratorEditor, CreatedAt: time.Now()}))
	}
	collaborators, err := notes.ListCollaborators(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, collaborators, 1)
	assert.Equal(t, invitee.ID, collaborators[0].User.ID)

	err = notes.UpsertCollaborator(ctx, &models.NoteCollaborator{NoteID: a.ID, UserID: uuid.New(), Role: models.CollaboratorEditor, CreatedAt: time.Now()})
	assert.ErrorIs(t, err, ErrNotFound, "unknown user violates the foreign key")
}

func TestPostgresDeleteAndRollback(t *testing.T) {
	db := openPostgres(t)
	ctx := context.Background()
	notes := NewNoteRepository(db)
	owner := pgUser(t, db, "owner@example.com")
	invitee := pgUser(t, db, "invitee@example.com")
	n := pgNote(t, db, owner.ID, time.Now())

	boom := errors.New("boom")
	err := notes.Transaction(ctx, func(tx NoteRepository) error {
		require.NoError(t, tx.SetPublic(ctx, n.ID, true))
		require.NoError(t, tx.UpsertPublicLink(ctx, &models.NotePublicLink{NoteID: n.ID, Slug: "rolled-back", CreatedAt: time.Now()}))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	after, err := notes.FindByID(ctx, n.ID)
	require.NoError(t, err)
	assert.False(t, after.IsPublic)
	_, err = notes.FindPublicLink(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, notes.UpsertPublicLink(ctx, &models.NotePublicLink{NoteID: n.ID, Slug: "gone", CreatedAt: time.Now()}))
	require.NoError(t, notes.UpsertCollaborator(ctx, &models.NoteCollaborator{NoteID: n.ID, UserID: invitee.ID, Role: models.CollaboratorEditor, CreatedAt: time.Now()}))
	require.NoError(t, NewCommentRepository(db).Create(ctx, &models.Comment{ID: uuid.New(), NoteID: n.ID, AuthorID: invitee.ID, Body: "x", CreatedAt: time.Now()}))

	require.NoError(t, notes.Transaction(ctx, func(tx NoteRepository) error {
		return tx.Delete(ctx, n.ID)
	}))
	_, err = notes.FindByID(ctx, n.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = notes.FindPublicLinkBySlug(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
	comments, err := NewCommentRepository(db).ListByNote(ctx, n.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	_, err = notes.FindCollaborator(ctx, n.ID, invitee.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, notes.Delete(ctx, n.ID), ErrNotFound)
}
