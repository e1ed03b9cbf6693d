package filestorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fcihub/studauth/internal/pkg/logger"
)

// LocalStorage stores blobs on the local filesystem and serves them
// through the server's static uploads route.
type LocalStorage struct {
	basePath string // root directory where files are stored
	baseURL  string // URL prefix under which basePath is served
}

// NewLocalStorage creates a LocalStorage rooted at basePath. Returned
// URLs are baseURL plus the path relative to basePath.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}

	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save stores content under subPath with a unique filename.
func (ls *LocalStorage) Save(ctx context.Context, content io.Reader, filename, subPath string) (string, error) {
	dir := ls.basePath
	if subPath != "" {
		dir = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage subdirectory")
			return "", fmt.Errorf("failed to create storage subdirectory: %w", err)
		}
	}

	// Unique stored name to prevent collisions between uploads.
	ext := filepath.Ext(filename)
	storedName := uuid.New().String() + ext
	dstPath := filepath.Join(dir, storedName)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	fileURL := ls.baseURL + "/" + path.Join(subPath, storedName)
	logger.Info().Str("filename", filename).Str("url", fileURL).Msg("File saved")
	return fileURL, nil
}

// Delete removes a stored blob by its URL. Missing files are treated as
// already deleted.
func (ls *LocalStorage) Delete(ctx context.Context, fileURL string) error {
	if fileURL == "" {
		return nil
	}

	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimLeft(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return fmt.Errorf("invalid file URL: %s", fileURL)
	}

	physicalPath := filepath.Join(ls.basePath, filepath.FromSlash(rel))
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}
