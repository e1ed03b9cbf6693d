package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fcihub/studauth/internal/app/models"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
	"github.com/fcihub/studauth/internal/pkg/dberrors"
	"github.com/fcihub/studauth/internal/pkg/logger"
)

// IUserRepository defines the interface for user database operations.
type IUserRepository interface {
	// Create inserts a new user and sets its ID. Uniqueness of email and
	// student_id is enforced by the insert itself, so two concurrent
	// registrations can never both succeed.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update persists name and password changes.
	Update(ctx context.Context, user *models.User) error
	// UpdateProfilePicture replaces the stored blob reference (nil clears it).
	UpdateProfilePicture(ctx context.Context, userID int64, fileURL *string) error
}

// UserRepository handles user database operations.
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{"id", "name", "email", "student_id", "password", "gender", "level", "profile_picture", "created_at", "updated_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.StudentID,
		&user.Password,
		&user.Gender,
		&user.Level,
		&user.ProfilePicture,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user row: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. Unique violations on email or student_id map
// to the corresponding apperrors sentinels.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	sql, args, err := r.sb.Insert("users").
		Columns("name", "email", "student_id", "password", "gender", "level", "created_at", "updated_at").
		Values(user.Name, user.Email, user.StudentID, user.Password, user.Gender, user.Level, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.ID); err != nil {
		if dberrors.IsUniqueViolation(err) {
			if dberrors.IsDuplicateConstraintError(err, "users_email_key") {
				return apperrors.ErrEmailAlreadyExists
			}
			return apperrors.ErrStudentIDAlreadyExists
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"email": email}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}

	return scanUser(r.db.QueryRow(ctx, sql, args...))
}

// Update persists name and password changes for an existing user. Email
// and student_id are immutable and never touched here.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	sql, args, err := r.sb.Update("users").
		Set("name", user.Name).
		Set("password", user.Password).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UpdateProfilePicture replaces the stored profile picture reference.
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, userID int64, fileURL *string) error {
	sql, args, err := r.sb.Update("users").
		Set("profile_picture", fileURL).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update profile picture query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing update profile picture query")
		return fmt.Errorf("error updating profile picture: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
