package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes_service/internal/access"
	"notes_service/internal/auth"
	"notes_service/internal/dto"
	"notes_service/internal/repositories"
	"notes_service/pkg/apperrors"
)

func newUserService(t *testing.T) (*UserService, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewUserService(repositories.NewMemoryStore().Users(), tokens, zerolog.Nop()), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	s, tokens := newUserService(t)
	ctx := context.Background()

	reg, err := s.Register(ctx, dto.RegisterReq{Email: "  Ada@Example.com ", Name: "Ada", Password: "lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	claims, err := tokens.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	_, err = s.Register(ctx, dto.RegisterReq{Email: "ada@example.com", Password: "another"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	login, err := s.Login(ctx, dto.LoginReq{Email: "ADA@example.com", Password: "lovelace"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	_, err = s.Login(ctx, dto.LoginReq{Email: "ada@example.com", Password: "wrong!"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	_, err = s.Login(ctx, dto.LoginReq{Email: "nobody@example.com", Password: "lovelace"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	user, err := s.GetUserByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	missing, err := s.GetUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, dto.RegisterReq{Email: "not-an-email", Password: "longenough"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = s.Register(ctx, dto.RegisterReq{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSearch(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	var me uuid.UUID
	for _, u := range []dto.RegisterReq{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "alan@example.com", Name: "Alan"},
		{Email: "bob@example.com", Name: "Bob"},
		{Email: "me@example.com", Name: "Al Me"},
	} {
		u.Password = "password"
		res, err := s.Register(ctx, u)
		require.NoError(t, err)
		if u.Name == "Al Me" {
			me = res.User.ID
		}
	}

	got, err := s.Search(ctx, me, "AL", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alan", got[0].Name)
	assert.Equal(t, "Alice", got[1].Name)

	got, err = s.Search(ctx, me, "example.com", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.Search(ctx, me, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = s.Search(ctx, access.Anonymous, "al", 10)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
