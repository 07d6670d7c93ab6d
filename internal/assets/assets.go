// Package assets persists generated images under a public directory so the
// API can hand out small relative URLs instead of multi-megabyte data URIs.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fashbot/fashbot/internal/normalize"
	"github.com/google/uuid"
)

// Store writes generated artifacts into a single directory. Filenames are
// random uuids, so concurrent requests never collide and no locking is
// needed.
type Store struct {
	dir string
}

// NewStore creates the directory if needed and returns the store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create generated dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory served under /generated/.
func (s *Store) Dir() string { return s.dir }

// SaveDataURI decodes a data URI to disk and returns its public URL. The
// file extension comes from the declared MIME type.
func (s *Store) SaveDataURI(dataURI string) (string, error) {
	parsed, err := normalize.ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}
	raw, err := parsed.Bytes()
	if err != nil {
		return "", err
	}
	return s.SaveBytes(raw, parsed.MimeType)
}

// SaveBytes writes raw image bytes and returns the public URL.
func (s *Store) SaveBytes(raw []byte, mimeType string) (string, error) {
	filename := uuid.New().String() + "." + extensionFor(mimeType)
	if err := os.WriteFile(filepath.Join(s.dir, filename), raw, 0o644); err != nil {
		return "", fmt.Errorf("write generated asset: %w", err)
	}
	return "/generated/" + filename, nil
}

func extensionFor(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "svg"):
		return "svg"
	case strings.Contains(mimeType, "jpeg"), strings.Contains(mimeType, "jpg"):
		return "jpg"
	case strings.Contains(mimeType, "webp"):
		return "webp"
	case strings.Contains(mimeType, "gif"):
		return "gif"
	default:
		return "png"
	}
}
