package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/fcihub/studauth/internal/app/models"
	"github.com/fcihub/studauth/internal/app/models/dto"
	"github.com/fcihub/studauth/internal/app/repositories"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
	"github.com/fcihub/studauth/internal/pkg/auth"
	"github.com/fcihub/studauth/internal/pkg/identity"
	"github.com/fcihub/studauth/internal/pkg/validation"
)

// AccountService orchestrates registration, login, logout and profile
// updates on top of the user and token repositories.
type AccountService struct {
	userRepo  repositories.IUserRepository
	tokenRepo repositories.ITokenRepository
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *AccountService {
	return &AccountService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register validates the registration request, persists the user with a
// hashed password and issues a first access token. Every failing field is
// reported at once; only the email rule chain short-circuits internally.
func (s *AccountService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, string, error) {
	errs := validation.NewErrors()

	if req.Name == "" {
		errs.Add("name", "The name field is required.")
	}

	// The email chain stops at its first failure: a malformed address is
	// never additionally reported as a mismatched student ID.
	if req.Email == "" {
		errs.Add("email", "The email field is required.")
	} else if !validation.EmailPattern.MatchString(req.Email) {
		errs.Add("email", "The email must be a valid email address.")
	} else if err := identity.Validate(req.Email, req.StudentID); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidFormat):
			errs.Add("email", "The email must be in the format: studentID@stud.fci-cu.edu.eg")
		case errors.Is(err, identity.ErrMismatchedID):
			errs.Add("email", "The student ID must match the ID in the email.")
		}
	}

	if req.StudentID == "" {
		errs.Add("student_id", "The student id field is required.")
	} else if !validation.IdentifierPattern.MatchString(req.StudentID) {
		errs.Add("student_id", "The student id must be 8 digits.")
	}

	if req.Password == "" {
		errs.Add("password", "The password field is required.")
	} else {
		// Limits count characters, not bytes.
		if utf8.RuneCountInString(req.Password) < validation.PasswordMinLength {
			errs.Add("password", fmt.Sprintf("The password must be at least %d characters.", validation.PasswordMinLength))
		}
		if req.Password != req.PasswordConfirmation {
			errs.Add("password", "The password confirmation does not match.")
		}
	}

	if req.Gender != nil && !models.Gender(*req.Gender).IsValid() {
		errs.Add("gender", "The selected gender is invalid.")
	}
	if req.Level != nil && !models.ValidLevel(*req.Level) {
		errs.Add("level", "The selected level is invalid.")
	}

	if errs.HasErrors() {
		return nil, "", apperrors.NewValidationError(errs.Fields())
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:      req.Name,
		Email:     req.Email,
		StudentID: req.StudentID,
		Password:  hashedPassword,
	}
	if req.Gender != nil {
		gender := models.Gender(*req.Gender)
		user.Gender = &gender
	}
	user.Level = req.Level

	// Uniqueness lives in the insert itself: the unique constraints decide
	// the winner when two registrations race on the same email or ID.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, "", apperrors.NewValidationError(map[string][]string{
				"email": {"The email has already been taken."},
			})
		}
		if errors.Is(err, apperrors.ErrStudentIDAlreadyExists) {
			return nil, "", apperrors.NewValidationError(map[string][]string{
				"student_id": {"The student id has already been taken."},
			})
		}
		return nil, "", fmt.Errorf("user creation error: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("userID", user.ID).Str("studentID", user.StudentID).Msg("Student registered")
	return user, token, nil
}

// Login authenticates a user by email and password. An unknown email and
// a wrong password are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, "", apperrors.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error finding user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	// Prior tokens stay valid, one per device.
	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")
	return user, token, nil
}

// Logout revokes every access token of the user. Idempotent.
func (s *AccountService) Logout(ctx context.Context, userID int64) (int64, error) {
	revoked, err := s.tokenRepo.RevokeAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error revoking tokens: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Int64("revokedCount", revoked).Msg("User logged out")
	return revoked, nil
}

// GetProfile retrieves the user's profile.
func (s *AccountService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. A name equal to the
// current one does not count as a change; a supplied password always
// does, since plaintext can never be compared against the stored digest.
// With nothing changed the result is ErrNoChange.
func (s *AccountService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	errs := validation.NewErrors()

	if req.Name != nil {
		if n := utf8.RuneCountInString(*req.Name); n < validation.NameMinLength || n > validation.NameMaxLength {
			errs.Add("name", fmt.Sprintf("The name must be between %d and %d characters.", validation.NameMinLength, validation.NameMaxLength))
		}
	}

	if req.Password != nil {
		// Stricter than registration on purpose: an updated password must
		// carry at least one digit.
		if utf8.RuneCountInString(*req.Password) < validation.PasswordMinLength {
			errs.Add("password", fmt.Sprintf("The password must be at least %d characters.", validation.PasswordMinLength))
		}
		if !validation.ContainsDigit(*req.Password) {
			errs.Add("password", "The password must contain at least one number.")
		}
		if req.PasswordConfirmation == nil || *req.Password != *req.PasswordConfirmation {
			errs.Add("password", "The password confirmation does not match.")
		}
	}

	if errs.HasErrors() {
		return nil, apperrors.NewValidationError(errs.Fields())
	}

	changed := false
	if req.Name != nil && *req.Name != user.Name {
		user.Name = *req.Name
		changed = true
	}
	if req.Password != nil {
		hashedPassword, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("error hashing password: %w", err)
		}
		user.Password = hashedPassword
		changed = true
	}

	if !changed {
		return nil, apperrors.ErrNoChange
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	s.logger.Info().Int64("userID", userID).Msg("Profile updated")
	return user, nil
}

func (s *AccountService) issueToken(ctx context.Context, userID int64) (string, error) {
	token, err := auth.NewToken()
	if err != nil {
		return "", fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.Create(ctx, token, userID, time.Now().Add(s.tokenTTL)); err != nil {
		return "", fmt.Errorf("token saving error: %w", err)
	}
	return token, nil
}
