package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"notes_service/internal/auth"
	"notes_service/internal/dto"
	"notes_service/internal/models"
	"notes_service/internal/repositories"
	"notes_service/pkg/apperrors"
	"notes_service/pkg/pagination"
)

const minPasswordLength = 6

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

// UserService handles registration, login and the invite picker search.
type UserService struct {
	users  repositories.UserRepository
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewUserService(users repositories.UserRepository, tokens TokenIssuer, log zerolog.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account and signs the new user in.
func (s *UserService) Register(ctx context.Context, req dto.RegisterReq) (*dto.AuthResult, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, apperrors.InvalidInput("INVALID_EMAIL", "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperrors.InvalidInput("PASSWORD_TOO_SHORT", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Conflict("EMAIL_TAKEN", "an account with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.signIn(user)
}

// Login checks credentials and returns a fresh token.
func (s *UserService) Login(ctx context.Context, req dto.LoginReq) (*dto.AuthResult, error) {
	invalid := apperrors.Unauthenticated("INVALID_CREDENTIALS", "email or password is incorrect")

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, invalid
	}
	return s.signIn(user)
}

func (s *UserService) signIn(user *models.User) (*dto.AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &dto.AuthResult{Token: token, User: dto.NewUserSummary(*user)}, nil
}

// GetUserByID returns nil when no such user exists.
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	return user, nil
}

// Search matches query against names and emails for the invite picker. The
// caller is left out since owners cannot invite themselves. An empty query
// returns nothing.
func (s *UserService) Search(ctx context.Context, caller uuid.UUID, query string, limit int) ([]dto.UserSummary, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []dto.UserSummary{}, nil
	}
	limit = pagination.ClampLimit(limit)

	rows, err := s.users.Search(ctx, query, limit+1)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	out := make([]dto.UserSummary, 0, len(rows))
	for _, u := range rows {
		if u.ID == caller {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, dto.NewUserSummary(u))
	}
	return out, nil
}
