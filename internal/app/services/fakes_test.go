package services

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/fcihub/studauth/internal/app/models"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
)

// fakeUserRepo is an in-memory IUserRepository that mirrors the unique
// constraints of the users table.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User

	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.StudentID == user.StudentID {
			return apperrors.ErrStudentIDAlreadyExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Password = user.Password
	stored.UpdatedAt = time.Now()
	return nil
}

func (r *fakeUserRepo) UpdateProfilePicture(ctx context.Context, userID int64, fileURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.ProfilePicture = fileURL
	return nil
}

// fakeTokenRepo is an in-memory ITokenRepository.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]fakeTokenRow

	createErr error
}

type fakeTokenRow struct {
	userID     int64
	expiryDate time.Time
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]fakeTokenRow)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	r.tokens[token] = fakeTokenRow{userID: userID, expiryDate: expiryDate}
	return nil
}

func (r *fakeTokenRepo) Resolve(ctx context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	if row.expiryDate.Before(time.Now()) {
		return 0, apperrors.ErrTokenExpired
	}
	return row.userID, nil
}

func (r *fakeTokenRepo) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var revoked int64
	for token, row := range r.tokens {
		if row.userID == userID {
			delete(r.tokens, token)
			revoked++
		}
	}
	return revoked, nil
}

func (r *fakeTokenRepo) CleanupExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	now := time.Now()
	for token, row := range r.tokens {
		if row.expiryDate.Before(now) {
			delete(r.tokens, token)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTokenRepo) countFor(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, row := range r.tokens {
		if row.userID == userID {
			count++
		}
	}
	return count
}

// fakeStorage records saved blobs and deletions in memory.
type fakeStorage struct {
	mu      sync.Mutex
	nextID  int
	saved   map[string][]byte
	deleted []string

	saveErr   error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string][]byte)}
}

func (s *fakeStorage) Save(ctx context.Context, content io.Reader, filename, subPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}

	s.nextID++
	url := "http://storage.test/" + subPath + "/" + strconv.Itoa(s.nextID) + "-" + filename
	s.saved[url] = data
	return url, nil
}

func (s *fakeStorage) Delete(ctx context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.saved[fileURL]; !ok {
		return errors.New("blob not found")
	}
	delete(s.saved, fileURL)
	s.deleted = append(s.deleted, fileURL)
	return nil
}
