// Package store persists decoded sprites to the destination directory.
package store

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// Sink accepts a sprite name and a decoded image and persists it. The
// scraper never inspects the destination beyond the returned path.
type Sink interface {
	WriteSprite(name string, img image.Image) (string, error)
	Destination() string
}

// DiskSink writes sprites as PNG files under a destination directory.
type DiskSink struct {
	dir string
}

// NewDiskSink creates a sink rooted at dir. The directory is created on the
// first write, not up front.
func NewDiskSink(dir string) *DiskSink {
	return &DiskSink{dir: dir}
}

// Destination returns the sink's root directory.
func (s *DiskSink) Destination() string { return s.dir }

// WriteSprite encodes img as PNG at <dir>/<name>.png and returns the path.
func (s *DiskSink) WriteSprite(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	path := filepath.Join(s.dir, sanitizeName(name)+".png")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to encode sprite: %w", err)
	}

	log.Debug().Str("file", path).Msg("Sprite saved")
	return path, nil
}

// sanitizeName strips path separators and other characters that would let a
// wiki title escape the destination directory.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		"..", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = strings.Trim(replacer.Replace(name), " .")
	if name == "" {
		name = "sprite"
	}
	return name
}
