package media

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const gallerySubdir = "gallery"

// Store keeps uploaded gallery images on disk under a media root. Stored
// names are uuid-based so uploads can never collide or traverse paths.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save writes the upload and returns the stored name, e.g. "gallery/ab12…f0.jpg".
// The original filename contributes only its extension.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	stored := filepath.Join(gallerySubdir, uuid.NewString()+ext)

	path := filepath.Join(s.root, stored)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}

	return filepath.ToSlash(stored), nil
}

// Remove deletes a stored file. Missing files are not an error; a crashed
// earlier delete may already have removed them.
func (s *Store) Remove(stored string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(stored)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns every stored gallery file name.
func (s *Store) List() ([]string, error) {
	dir := filepath.Join(s.root, gallerySubdir)

	names := make([]string, 0)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}
