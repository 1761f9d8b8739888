package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// MediaStore keeps evidentiary files on local disk. The rest of the
// system only ever sees the stored path and public URL it returns.
type MediaStore struct {
	dir     string
	baseURL string
}

func NewMediaStore(dir string) *MediaStore {
	if dir == "" {
		dir = "uploads/media"
	}
	return &MediaStore{
		dir:     dir,
		baseURL: "/media",
	}
}

// Save writes the file under a collision-free name and returns the
// stored path plus the URL it is served from.
func (ms *MediaStore) Save(filename string, r io.Reader) (string, string, error) {
	if err := os.MkdirAll(ms.dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create media directory: %w", err)
	}

	stored := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(filename))
	path := filepath.Join(ms.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("failed to write media file: %w", err)
	}

	return path, fmt.Sprintf("%s/%s", ms.baseURL, stored), nil
}

// Remove deletes a stored file.
func (ms *MediaStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

// Dir returns the directory the store serves files from.
func (ms *MediaStore) Dir() string {
	return ms.dir
}

// BaseURL returns the URL prefix stored files are served under.
func (ms *MediaStore) BaseURL() string {
	return ms.baseURL
}
