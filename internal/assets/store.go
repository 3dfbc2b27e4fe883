// Package assets resolves figure, table, and page-image back-references
// to binary payloads. A missing identifier and a failed read are
// distinct outcomes: the first is a bad guess the model can correct,
// the second is a broken deployment.
package assets

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound marks an asset path that does not exist in the store.
var ErrNotFound = errors.New("asset not found")

var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
}

// Image is a resolved binary payload with its media type.
type Image struct {
	MediaType string
	Data      []byte
}

// DataURL encodes the image for inline chat-API attachment.
func (i Image) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", i.MediaType, base64.StdEncoding.EncodeToString(i.Data))
}

// Store reads document assets from a preprocessed document directory:
// figures/ for extracted images, page_images/page_%04d.png for page
// rasters, and table screenshots by relative path.
type Store struct {
	dir      string
	numPages int
}

// Open opens the asset store for one document directory. The page count
// is derived from the rasterized page images.
func Open(dir string) (*Store, error) {
	pages, err := filepath.Glob(filepath.Join(dir, "page_images", "page_*.png"))
	if err != nil {
		return nil, fmt.Errorf("scan page images: %w", err)
	}
	return &Store{dir: dir, numPages: len(pages)}, nil
}

// NumPages returns the number of rasterized pages.
func (s *Store) NumPages() int {
	return s.numPages
}

// PageImage returns the raster for a 1-indexed page number.
func (s *Store) PageImage(page int) (Image, error) {
	name := fmt.Sprintf("page_%04d.png", page-1)
	return s.read(filepath.Join("page_images", name))
}

// Figure returns an extracted figure image by file name.
func (s *Store) Figure(name string) (Image, error) {
	return s.read(filepath.Join("figures", name))
}

// TableImage returns a rendered table screenshot by its relative path.
func (s *Store) TableImage(rel string) (Image, error) {
	return s.read(rel)
}

func (s *Store) read(rel string) (Image, error) {
	ext := strings.ToLower(filepath.Ext(rel))
	mediaType, ok := mediaTypes[ext]
	if !ok {
		return Image{}, fmt.Errorf("unsupported image format %q", ext)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, rel))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Image{}, fmt.Errorf("%w: %s", ErrNotFound, rel)
		}
		return Image{}, fmt.Errorf("read asset %s: %w", rel, err)
	}
	return Image{MediaType: mediaType, Data: data}, nil
}
