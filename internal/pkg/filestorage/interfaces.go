package filestorage

import (
	"io"
)

// FileStorage stores uploaded documents
type FileStorage interface {
	// Save writes the content under subPath and returns the stored file path
	Save(r io.Reader, filename, subPath string) (string, error)

	// DeleteFile removes a stored file; missing files are not an error
	DeleteFile(filePath string) error
}
