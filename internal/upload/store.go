// Package upload persists image files for the catalog.
//
// Rows in product_images hold relative URLs like "uploads/<token>_<name>.jpg";
// this package owns the mapping between those URLs and real files in the
// upload directory. Names embed an xid token, so two uploads of the same
// original filename never collide, and the original name survives in
// sanitized form for humans reading the directory.
package upload

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/xid"

	"github.com/HealthyWithVictor/storefront/internal/apperror"
)

// URLPrefix is the leading path segment stored in image_url values and the
// route the HTTP layer serves the directory under.
const URLPrefix = "uploads"

// Store writes and removes files in a single upload directory.
type Store struct {
	dir string
}

// NewStore ensures dir exists and returns a Store rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: creating upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the absolute upload directory, for static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data under a collision-free name derived from originalFilename
// and returns the relative URL to store in the database. A write failure is
// an ErrIO, fatal for the enclosing operation, since committing a row that
// points at a missing file is worse than failing the upload.
func (s *Store) Save(data []byte, originalFilename string) (string, error) {
	name := fmt.Sprintf("%s_%s", xid.New().String(), SanitizeFilename(originalFilename))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", apperror.IO("upload: writing file", err)
	}
	return path.Join(URLPrefix, name), nil
}

// Remove deletes the file behind a stored URL. A file that is already gone is
// not an error: the row is the source of truth and an orphan-free disk is
// best effort. Any other failure comes back as ErrIO for the caller to log.
func (s *Store) Remove(imageURL string) error {
	// Only the final element of the stored URL is trusted; anything
	// path-like a corrupted row might contain is discarded.
	name := path.Base(imageURL)
	if name == "." || name == "/" || name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return apperror.IO("upload: removing file", err)
	}
	return nil
}

// Exists reports whether the file behind a stored URL is present on disk.
func (s *Store) Exists(imageURL string) bool {
	_, err := os.Stat(filepath.Join(s.dir, path.Base(imageURL)))
	return err == nil
}

// SanitizeFilename reduces an uploaded filename to a safe form: the base name
// only (no directory components), with everything outside [a-zA-Z0-9._-]
// replaced by underscores. An empty or fully-hostile name becomes "file".
func SanitizeFilename(name string) string {
	// Handle both separators regardless of the uploader's platform.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}
