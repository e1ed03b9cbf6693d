// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fcihub/studauth/internal/app/models/dto"
	"github.com/fcihub/studauth/internal/app/services"
	"github.com/fcihub/studauth/internal/middleware"
)

// AuthController handles registration, login and logout.
type AuthController struct {
	accountService *services.AccountService
	logger         zerolog.Logger
}

// NewAuthController creates a new AuthController.
func NewAuthController(accountService *services.AccountService, logger zerolog.Logger) *AuthController {
	return &AuthController{
		accountService: accountService,
		logger:         logger,
	}
}

// Register handles POST /register.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid registration request payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(dto.FormatBindingError(err)))
		return
	}

	user, token, err := c.accountService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Token:   token,
		Name:    user.Name,
		Message: "Registration successful!",
	})
}

// Login handles POST /login.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid login request payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(dto.FormatBindingError(err)))
		return
	}

	user, token, err := c.accountService.Login(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Login failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.AuthResponse{
		Success: true,
		Token:   token,
		Name:    user.Name,
		Message: "Login successful!",
	})
}

// Logout handles POST /logout. Revokes every token of the current user.
func (c *AuthController) Logout(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	if _, err := c.accountService.Logout(ctx.Request.Context(), userID); err != nil {
		c.logger.Error().Err(err).Int64("userID", userID).Msg("Logout failed")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Logged out successfully!",
	})
}
