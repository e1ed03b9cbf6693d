package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fcihub/studauth/internal/app/models/dto"
	"github.com/fcihub/studauth/internal/app/repositories"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
)

// userIDKey is the gin context key the middleware stores the resolved
// user under.
const userIDKey = "userID"

// AuthMiddleware guards routes behind opaque bearer tokens.
type AuthMiddleware struct {
	tokenRepo repositories.ITokenRepository
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokenRepo repositories.ITokenRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenRepo: tokenRepo}
}

// RequireToken resolves the bearer token on every request; an absent or
// unresolvable token aborts with 401.
func (m *AuthMiddleware) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Unauthenticated."))
			return
		}

		userID, err := m.tokenRepo.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenNotFound) || errors.Is(err, apperrors.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse("Unauthenticated."))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's ID set by RequireToken.
func CurrentUserID(c *gin.Context) int64 {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// extractBearerToken returns the token from an "Authorization: Bearer x"
// header. Any other scheme yields "".
func extractBearerToken(authHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimPrefix(authHeader, prefix)
}
