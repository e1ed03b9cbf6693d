package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fcihub/studauth/internal/app/models/dto"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
	"github.com/fcihub/studauth/internal/pkg/logger"
)

// HandleAPIError maps service errors to the outward response shapes.
func HandleAPIError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(verr.Fields))
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		// Deliberately generic, the caller cannot tell an unknown email
		// from a wrong password.
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Invalid email or password!"))
	case errors.Is(err, apperrors.ErrNoChange):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("No changes were made to the profile."))
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("User not found."))
	case errors.Is(err, apperrors.ErrTokenNotFound), errors.Is(err, apperrors.ErrTokenExpired), errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse("Unauthenticated."))
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// Recovery returns a gin recovery handler that renders panics as the
// generic 500 body instead of an empty response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().Interface("panic", recovered).Str("path", c.FullPath()).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	})
}
