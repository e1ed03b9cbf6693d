package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcihub/studauth/internal/app/controllers"
	"github.com/fcihub/studauth/internal/app/models"
	"github.com/fcihub/studauth/internal/app/services"
	"github.com/fcihub/studauth/internal/middleware"
	"github.com/fcihub/studauth/internal/pkg/apperrors"
)

// In-memory backends so the full HTTP stack can run without Postgres or
// a blob store.

type memUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
		if u.StudentID == user.StudentID {
			return apperrors.ErrStudentIDAlreadyExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
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

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Password = user.Password
	return nil
}

func (r *memUserRepo) UpdateProfilePicture(ctx context.Context, userID int64, fileURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	stored.ProfilePicture = fileURL
	return nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]int64
}

func (r *memTokenRepo) Create(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = userID
	return nil
}

func (r *memTokenRepo) Resolve(ctx context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.tokens[token]
	if !ok {
		return 0, apperrors.ErrTokenNotFound
	}
	return userID, nil
}

func (r *memTokenRepo) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var revoked int64
	for token, owner := range r.tokens {
		if owner == userID {
			delete(r.tokens, token)
			revoked++
		}
	}
	return revoked, nil
}

func (r *memTokenRepo) CleanupExpired(ctx context.Context) (int64, error) { return 0, nil }

type memStorage struct {
	mu    sync.Mutex
	count int
}

func (s *memStorage) Save(ctx context.Context, content io.Reader, filename, subPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	s.count++
	return "http://storage.test/" + subPath + "/" + filename, nil
}

func (s *memStorage) Delete(ctx context.Context, fileURL string) error { return nil }

func newTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)

	userRepo := &memUserRepo{users: make(map[int64]*models.User)}
	tokenRepo := &memTokenRepo{tokens: make(map[string]int64)}
	storage := &memStorage{}

	accountService := services.NewAccountService(userRepo, tokenRepo, time.Hour, zerolog.Nop())
	photoService := services.NewProfilePhotoService(userRepo, storage, zerolog.Nop())

	authController := controllers.NewAuthController(accountService, zerolog.Nop())
	userController := controllers.NewUserController(accountService, photoService, zerolog.Nop())
	authMiddleware := middleware.NewAuthMiddleware(tokenRepo)

	router := gin.New()
	router.Use(middleware.Recovery())
	SetupRouter(router, authController, userController, authMiddleware)
	return router
}

func doJSON(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerStudent(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := doJSON(router, http.MethodPost, "/api/register", "", `{
		"name": "Ahmed Hassan",
		"email": "20201234@stud.fci-cu.edu.eg",
		"student_id": "20201234",
		"password": "secret123",
		"password_confirmation": "secret123"
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer()
	rec := doJSON(router, http.MethodGet, "/up", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestRegisterEndpoint(t *testing.T) {
	router := newTestServer()

	t.Run("success", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/register", "", `{
			"name": "Ahmed Hassan",
			"email": "20201234@stud.fci-cu.edu.eg",
			"student_id": "20201234",
			"password": "secret123",
			"password_confirmation": "secret123"
		}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, "Registration successful!", resp["message"])
		assert.Equal(t, "Ahmed Hassan", resp["name"])
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/register", "", `{
			"name": "Ahmed Hassan",
			"email": "20201234@stud.fci-cu.edu.eg",
			"student_id": "20201234",
			"password": "secret123",
			"password_confirmation": "secret123"
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["success"])
		assert.Equal(t, "The given data was invalid.", resp["message"])
	})

	t.Run("validation failure lists every field", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/register", "", `{}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "name")
		assert.Contains(t, resp.Errors, "email")
		assert.Contains(t, resp.Errors, "student_id")
		assert.Contains(t, resp.Errors, "password")
	})

	t.Run("malformed json", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/register", "", `{"name": `)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestServer()
	registerStudent(t, router)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/login", "", `{
			"email": "20201234@stud.fci-cu.edu.eg",
			"password": "secret123"
		}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Login successful!", resp["message"])
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("wrong password and unknown email look identical", func(t *testing.T) {
		wrongPassword := doJSON(router, http.MethodPost, "/api/login", "", `{
			"email": "20201234@stud.fci-cu.edu.eg",
			"password": "wrong-password"
		}`)
		unknownEmail := doJSON(router, http.MethodPost, "/api/login", "", `{
			"email": "99999999@stud.fci-cu.edu.eg",
			"password": "secret123"
		}`)

		assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
		assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
		assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
		assert.JSONEq(t, `{"success": false, "message": "Invalid email or password!"}`, wrongPassword.Body.String())
	})

	t.Run("missing fields rejected at binding", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/login", "", `{}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestLogoutEndpoint(t *testing.T) {
	router := newTestServer()
	token := registerStudent(t, router)

	rec := doJSON(router, http.MethodPost, "/api/logout", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true, "message": "Logged out successfully!"}`, rec.Body.String())

	// The token is dead after logout.
	rec = doJSON(router, http.MethodGet, "/api/user", token, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	router := newTestServer()
	first := registerStudent(t, router)

	rec := doJSON(router, http.MethodPost, "/api/login", "", `{
		"email": "20201234@stud.fci-cu.edu.eg",
		"password": "secret123"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &loginResp))

	rec = doJSON(router, http.MethodPost, "/api/logout", loginResp.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/api/user", first, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doJSON(router, http.MethodGet, "/api/user", loginResp.Token, "").Code)
}

func TestGetUserEndpoint(t *testing.T) {
	router := newTestServer()
	token := registerStudent(t, router)

	rec := doJSON(router, http.MethodGet, "/api/user", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		User    struct {
			Name           string  `json:"name"`
			Email          string  `json:"email"`
			ProfilePicture *string `json:"profile_picture"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Ahmed Hassan", resp.User.Name)
	assert.Equal(t, "20201234@stud.fci-cu.edu.eg", resp.User.Email)
	assert.Nil(t, resp.User.ProfilePicture)
}

func TestGetUserRequiresToken(t *testing.T) {
	router := newTestServer()
	rec := doJSON(router, http.MethodGet, "/api/user", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success": false, "message": "Unauthenticated."}`, rec.Body.String())
}

func TestUpdateProfileEndpoint(t *testing.T) {
	router := newTestServer()
	token := registerStudent(t, router)

	t.Run("rename", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/update-profile", token, `{"name": "Ahmed H. Mostafa"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Profile updated successfully!", resp["message"])
	})

	t.Run("no change", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/update-profile", token, `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success": false, "message": "No changes were made to the profile."}`, rec.Body.String())
	})

	t.Run("invalid password", func(t *testing.T) {
		rec := doJSON(router, http.MethodPost, "/api/update-profile", token, `{
			"password": "nodigits",
			"password_confirmation": "nodigits"
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors["password"], "The password must contain at least one number.")
	})
}

func multipartPhoto(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUpdatePhotoEndpoint(t *testing.T) {
	router := newTestServer()
	token := registerStudent(t, router)

	t.Run("success", func(t *testing.T) {
		body, contentType := multipartPhoto(t, "photo", "avatar.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/update-photo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Profile photo updated successfully!", resp["message"])
		assert.NotEmpty(t, resp["photo_url"])

		// The new URL shows up on the profile.
		userRec := doJSON(router, http.MethodGet, "/api/user", token, "")
		require.Equal(t, http.StatusOK, userRec.Code)
		var userResp struct {
			User struct {
				ProfilePicture *string `json:"profile_picture"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(userRec.Body.Bytes(), &userResp))
		require.NotNil(t, userResp.User.ProfilePicture)
		assert.Equal(t, resp["photo_url"], *userResp.User.ProfilePicture)
	})

	t.Run("missing file field", func(t *testing.T) {
		body, contentType := multipartPhoto(t, "attachment", "avatar.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/update-photo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var resp struct {
			Errors map[string][]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors["photo"], "The photo field is required.")
	})

	t.Run("wrong file type", func(t *testing.T) {
		body, contentType := multipartPhoto(t, "photo", "notes.txt", []byte("text"))
		req := httptest.NewRequest(http.MethodPost, "/api/update-photo", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("requires token", func(t *testing.T) {
		body, contentType := multipartPhoto(t, "photo", "avatar.png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/update-photo", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
