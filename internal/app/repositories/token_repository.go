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
	"github.com/fcihub/studauth/internal/pkg/logger"
)

// ITokenRepository defines the interface for access token operations.
// Tokens are opaque strings bound to one user; several may be live per
// user at once.
type ITokenRepository interface {
	Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error
	// Resolve returns the owning user for a live token.
	Resolve(ctx context.Context, token string) (int64, error)
	// RevokeAll deletes every token bound to userID and returns the count.
	// Revoking a user with no tokens succeeds with count 0.
	RevokeAll(ctx context.Context, userID int64) (int64, error)
	// CleanupExpired removes tokens past their expiry date.
	CleanupExpired(ctx context.Context) (int64, error)
}

// TokenRepository handles access token database operations.
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new access token.
func (r *TokenRepository) Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	row := models.AccessToken{
		Token:      token,
		UserID:     userID,
		ExpiryDate: expiryDate,
		CreatedAt:  time.Now(),
	}

	sql, args, err := r.sb.Insert("access_tokens").
		Columns("token", "user_id", "expiry_date", "created_at").
		Values(row.Token, row.UserID, row.ExpiryDate, row.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create token query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing create token query")
		return fmt.Errorf("error creating token: %w", err)
	}
	return nil
}

// Resolve looks up the owning user of a token. Unknown tokens yield
// ErrTokenNotFound, expired ones ErrTokenExpired.
func (r *TokenRepository) Resolve(ctx context.Context, token string) (int64, error) {
	sql, args, err := r.sb.Select("user_id", "expiry_date").
		From("access_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build resolve token query: %w", err)
	}

	row := models.AccessToken{Token: token}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&row.UserID, &row.ExpiryDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrTokenNotFound
		}
		logger.Error().Err(err).Msg("Error scanning token row")
		return 0, fmt.Errorf("error resolving token: %w", err)
	}

	if row.ExpiryDate.Before(time.Now()) {
		return 0, apperrors.ErrTokenExpired
	}
	return row.UserID, nil
}

// RevokeAll deletes every token bound to a user.
func (r *TokenRepository) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	sql, args, err := r.sb.Delete("access_tokens").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build revoke tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing revoke tokens query")
		return 0, fmt.Errorf("error revoking tokens: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// CleanupExpired removes expired tokens from the database.
func (r *TokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("access_tokens").
		Where(squirrel.Lt{"expiry_date": time.Now()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build cleanup tokens query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing cleanup tokens query")
		return 0, fmt.Errorf("error cleaning up tokens: %w", err)
	}

	deleted := cmdTag.RowsAffected()
	if deleted > 0 {
		logger.Info().Int64("deletedCount", deleted).Msg("Cleaned up expired tokens")
	}
	return deleted, nil
}
