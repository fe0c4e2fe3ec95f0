// Package posters keeps downloaded poster images on the local filesystem.
package posters

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrInvalidName is returned for names that are empty or would escape the poster directory.
var ErrInvalidName = errors.New("invalid poster name")

// Store is a flat directory of poster files.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns a store rooted at it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create poster dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory.
func (s *Store) Dir() string {
	return s.dir
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// Path returns the absolute location of name inside the store.
func (s *Store) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// Save writes data under name, replacing any existing file atomically.
func (s *Store) Save(name string, data []byte) error {
	dst, err := s.Path(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".poster-*")
	if err != nil {
		return fmt.Errorf("create temp poster: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write poster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close poster: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("chmod poster: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("rename poster: %w", err)
	}
	return nil
}

// Remove deletes name. A file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove poster %s: %w", name, err)
	}
	return nil
}

// Exists reports whether name is present.
func (s *Store) Exists(name string) bool {
	p, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// FileName derives the local file name for a TMDB poster: "<tmdbID><ext>".
// The extension comes from the content type, falling back to the remote path
// and finally to ".jpg".
func FileName(tmdbID int64, contentType, remotePath string) string {
	ext := ""
	if ct, _, _ := strings.Cut(contentType, ";"); ct != "" {
		ext = extByContentType[strings.ToLower(strings.TrimSpace(ct))]
	}
	if ext == "" {
		ext = strings.ToLower(path.Ext(remotePath))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		default:
			ext = ".jpg"
		}
	}
	return strconv.FormatInt(tmdbID, 10) + ext
}
