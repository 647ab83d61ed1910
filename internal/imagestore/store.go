// Package imagestore persists generated artwork blobs and hands out the
// public URLs stored on invitations. Backed by an afero filesystem so
// tests run against memory.
package imagestore

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	logger = log.With().Str("component", "imagestore").Logger()
)

type Config struct {
	// Dir is the blob directory. Empty disables the store; generated
	// images are then inlined as data URLs instead.
	Dir string `yaml:"dir"`

	// PublicPath is the URL path the blobs are served under.
	PublicPath string `yaml:"public_path"`
}

func (c *Config) applyDefaults() {
	if c.PublicPath == "" {
		c.PublicPath = "/images"
	}
}

// Enabled reports whether a blob directory is configured.
func (c *Config) Enabled() bool {
	return c.Dir != ""
}

type Store struct {
	fs         afero.Fs
	publicPath string
}

// New opens a store rooted at cfg.Dir on the OS filesystem.
func New(cfg *Config) (*Store, error) {
	cfg.applyDefaults()

	base := afero.NewOsFs()
	if err := base.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return NewWithFs(afero.NewBasePathFs(base, cfg.Dir), cfg.PublicPath), nil
}

// NewWithFs opens a store over an arbitrary filesystem. Tests use
// afero.NewMemMapFs.
func NewWithFs(fs afero.Fs, publicPath string) *Store {
	return &Store{
		fs:         fs,
		publicPath: strings.TrimRight(publicPath, "/"),
	}
}

// Save writes the blob under a fresh uuid name and returns its public
// URL path.
func (s *Store) Save(data []byte, mimeType string) (string, error) {
	name := uuid.New().String() + extensionFor(mimeType)
	if err := afero.WriteFile(s.fs, name, data, 0o644); err != nil {
		return "", fmt.Errorf("write image blob: %w", err)
	}
	logger.Debug().Str("name", name).Int("bytes", len(data)).Msg("stored generated image")
	return s.publicPath + "/" + name, nil
}

// PublicPath returns the URL path the store serves blobs under.
func (s *Store) PublicPath() string {
	return s.publicPath
}

// HTTPFileSystem exposes the blobs for serving.
func (s *Store) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
