package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/fcihub/studauth/internal/app/models/dto"
	"github.com/fcihub/studauth/internal/app/services"
	"github.com/fcihub/studauth/internal/middleware"
)

// UserController handles profile reads and updates for the current user.
type UserController struct {
	accountService *services.AccountService
	photoService   *services.ProfilePhotoService
	logger         zerolog.Logger
}

// NewUserController creates a new UserController.
func NewUserController(
	accountService *services.AccountService,
	photoService *services.ProfilePhotoService,
	logger zerolog.Logger,
) *UserController {
	return &UserController{
		accountService: accountService,
		photoService:   photoService,
		logger:         logger,
	}
}

// GetUser handles GET /user.
func (c *UserController) GetUser(ctx *gin.Context) {
	userID := middleware.CurrentUserID(ctx)

	user, err := c.accountService.GetProfile(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UserResponse{
		Success: true,
		User:    dto.NewUserView(user),
	})
}

// UpdateProfile handles POST /update-profile.
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid profile update payload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(dto.FormatBindingError(err)))
		return
	}

	userID := middleware.CurrentUserID(ctx)

	user, err := c.accountService.UpdateProfile(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdateProfileResponse{
		Success: true,
		Message: "Profile updated successfully!",
		User:    dto.NewUserView(user),
	})
}

// UpdatePhoto handles POST /update-photo with a multipart "photo" field.
func (c *UserController) UpdatePhoto(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("photo")
	if err != nil {
		c.logger.Warn().Err(err).Msg("Missing photo upload")
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewValidationErrorResponse(map[string][]string{
			"photo": {"The photo field is required."},
		}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to open uploaded photo")
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer file.Close()

	userID := middleware.CurrentUserID(ctx)

	photoURL, err := c.photoService.UpdatePhoto(ctx.Request.Context(), userID, file, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UpdatePhotoResponse{
		Success:  true,
		Message:  "Profile photo updated successfully!",
		PhotoURL: photoURL,
	})
}
