package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fcihub/studauth/internal/app/repositories"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
	"github.com/fcihub/studauth/internal/pkg/filestorage"
)

// photoSubPath is the blob-store namespace for profile photos.
const photoSubPath = "profile_photos"

// MaxPhotoSizeKB is the upload size limit for profile photos.
const MaxPhotoSizeKB = 2048

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ProfilePhotoService manages replacement of a user's stored profile
// photo blob.
type ProfilePhotoService struct {
	userRepo repositories.IUserRepository
	storage  filestorage.FileStorage
	logger   zerolog.Logger
}

// NewProfilePhotoService creates a new ProfilePhotoService.
func NewProfilePhotoService(
	userRepo repositories.IUserRepository,
	storage filestorage.FileStorage,
	logger zerolog.Logger,
) *ProfilePhotoService {
	return &ProfilePhotoService{
		userRepo: userRepo,
		storage:  storage,
		logger:   logger,
	}
}

// UpdatePhoto stores a new profile photo, persists its reference and
// returns the public URL. The previous blob is deleted best-effort: a
// failed delete is logged, never surfaced.
func (s *ProfilePhotoService) UpdatePhoto(ctx context.Context, userID int64, content io.Reader, filename string, size int64) (string, error) {
	fields := make(map[string][]string)

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExtensions[ext] {
		fields["photo"] = append(fields["photo"], "The photo must be a file of type: jpg, jpeg, png.")
	}
	if size > MaxPhotoSizeKB*1024 {
		fields["photo"] = append(fields["photo"], fmt.Sprintf("The photo may not be greater than %d kilobytes.", MaxPhotoSizeKB))
	}
	if len(fields) > 0 {
		return "", apperrors.NewValidationError(fields)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("error finding user: %w", err)
	}

	photoURL, err := s.storage.Save(ctx, content, filename, photoSubPath)
	if err != nil {
		return "", fmt.Errorf("error storing photo: %w", err)
	}

	if err := s.userRepo.UpdateProfilePicture(ctx, userID, &photoURL); err != nil {
		return "", fmt.Errorf("error persisting photo reference: %w", err)
	}

	// The new reference is already persisted; a leftover old blob is
	// acceptable, a broken update is not.
	if user.ProfilePicture != nil {
		if err := s.storage.Delete(ctx, *user.ProfilePicture); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Str("url", *user.ProfilePicture).Msg("Failed to delete old profile photo")
		}
	}

	s.logger.Info().Int64("userID", userID).Str("url", photoURL).Msg("Profile photo updated")
	return photoURL, nil
}
