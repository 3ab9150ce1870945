package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes_service/internal/access"
	"notes_service/internal/auth"
	"notes_service/internal/models"
	"notes_service/pkg/apperrors"
	"notes_service/pkg/logger"
	"notes_service/pkg/responses"
)

const userIDKey = "user_id"

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// UserLookup returns nil for an unknown user.
type UserLookup interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token for an existing user.
func AuthMiddleware(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return authenticate(tokens, users, true)
}

// OptionalAuth lets requests without an Authorization header through as
// anonymous. A header that is present must still be valid.
func OptionalAuth(tokens TokenValidator, users UserLookup) gin.HandlerFunc {
	return authenticate(tokens, users, false)
}

func authenticate(tokens TokenValidator, users UserLookup, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				responses.Abort(c, apperrors.Unauthenticated("AUTH_REQUIRED", "authorization header required"))
				return
			}
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			responses.Abort(c, apperrors.Unauthenticated("INVALID_TOKEN", "malformed authorization header"))
			return
		}
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			logger.Log.Debug().Err(err).Msg("token validation failed")
			responses.Abort(c, apperrors.Unauthenticated("INVALID_TOKEN", "invalid token"))
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}
		if user == nil {
			responses.Abort(c, apperrors.Unauthenticated("UNKNOWN_USER", "user not found"))
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// CallerID returns the authenticated user, or access.Anonymous.
func CallerID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return access.Anonymous
}
