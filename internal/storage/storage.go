// Package storage provides blob storage for uploaded recipe images on
// the local filesystem.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// recipeImageDir is the subdirectory for recipe images under the root.
const recipeImageDir = "recipes"

// allowedExtensions limits what extension a stored filename may carry.
// The extension is cosmetic; content is validated before storage.
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Store writes and removes image blobs under a media root directory.
type Store struct {
	root string
}

// New creates a Store rooted at the given directory, creating it if
// needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, recipeImageDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the media root directory.
func (s *Store) Root() string {
	return s.root
}

// Save writes the blob under the given name and returns the path
// relative to the media root. The name must come from ImageFileName,
// never from user input.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	rel := filepath.Join(recipeImageDir, name)
	full := filepath.Join(s.root, rel)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	return filepath.ToSlash(rel), nil
}

// Remove deletes a previously saved blob by its relative path.
// Missing files are not an error.
func (s *Store) Remove(rel string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image file: %w", err)
	}
	return nil
}

// ImageFileName builds a storage filename from a fresh random uuid plus
// the original file's extension. Nothing user-controlled beyond the
// extension (validated against a whitelist) reaches the filesystem.
func ImageFileName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExtensions[ext] {
		ext = ".jpg"
	}
	return uuid.New().String() + ext
}
