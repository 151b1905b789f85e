package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/placementcell/internal/pkg/logger"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SafeFilename reduces an uploaded name to a portable base name
func SafeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")
	if name == "" {
		return uuid.New().String()
	}
	return name
}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath string
	now      func() time.Time
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating it if needed
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{basePath: basePath, now: time.Now}, nil
}

// Save writes r to <base>/<subPath>/<UTC timestamp>_<safe name>
func (ls *LocalStorage) Save(r io.Reader, filename, subPath string) (string, error) {
	dir := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Str("path", dir).Msg("Failed to create subdirectory")
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	stored := ls.now().UTC().Format("20060102150405") + "_" + SafeFilename(filename)
	dstPath := filepath.Join(dir, stored)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		stored = ls.now().UTC().Format("20060102150405") + "_" + uuid.New().String()[:8] + "_" + SafeFilename(filename)
		dstPath = filepath.Join(dir, stored)
		dst, err = os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", filename).Str("savedAs", dstPath).Msg("File saved successfully")
	return dstPath, nil
}

// DeleteFile removes a file below the storage root
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}
	rel, err := filepath.Rel(ls.basePath, filePath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("invalid file path: %s", filePath)
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", filePath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
