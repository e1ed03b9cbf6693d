package dto

import "github.com/fcihub/studauth/internal/app/models"

// UserView is the outward representation of a user. ProfilePicture is
// either null or a fully-qualified blob URL.
type UserView struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	ProfilePicture *string `json:"profile_picture"`
}

// NewUserView builds a UserView from the user model.
func NewUserView(user *models.User) UserView {
	return UserView{
		ID:             user.ID,
		Name:           user.Name,
		Email:          user.Email,
		ProfilePicture: user.ProfilePicture,
	}
}

// UserResponse wraps a user view for GET /user.
type UserResponse struct {
	Success bool     `json:"success"`
	User    UserView `json:"user"`
}

// UpdateProfileRequest carries a partial profile update. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	Name                 *string `json:"name,omitempty"`
	Password             *string `json:"password,omitempty"`
	PasswordConfirmation *string `json:"password_confirmation,omitempty"`
}

// UpdateProfileResponse is returned on a successful profile update.
type UpdateProfileResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    UserView `json:"user"`
}

// UpdatePhotoResponse is returned on a successful profile photo update.
type UpdatePhotoResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	PhotoURL string `json:"photo_url"`
}
