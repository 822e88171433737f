// Package gallery stores the hero carousel images of the storefront as one
// JSON-encoded list under a single key.
package gallery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/repositories"
	"storefront/internal/validation"
)

const (
	namespace = "gallery"
	key       = "images"
)

// ErrIndexOutOfRange is returned when removing an image that does not exist.
var ErrIndexOutOfRange = errors.New("gallery index out of range")

// Image is the input of Add.
type Image struct {
	URL string `json:"url" validate:"required,url|datauri"`
}

// Gallery is the ordered list of carousel images.
type Gallery struct {
	repo repositories.KVRepository
	mu   sync.Mutex
}

// New creates a new Gallery.
func New(repo repositories.KVRepository) *Gallery {
	return &Gallery{repo: repo}
}

// List returns the images in display order.
func (g *Gallery) List() ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.load()
}

// Add appends an image URL or data URL.
func (g *Gallery) Add(img Image) ([]string, error) {
	img.URL = strings.TrimSpace(img.URL)
	if err := validation.Struct(img); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	images, err := g.load()
	if err != nil {
		return nil, err
	}
	images = append(images, img.URL)
	return images, g.save(images)
}

// Remove deletes the image at index.
func (g *Gallery) Remove(index int) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	images, err := g.load()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(images) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	images = append(images[:index], images[index+1:]...)
	return images, g.save(images)
}

func (g *Gallery) load() ([]string, error) {
	raw, err := g.repo.Get(namespace, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery: %w", err)
	}
	images := []string{}
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		return nil, fmt.Errorf("failed to decode gallery: %w", err)
	}
	return images, nil
}

func (g *Gallery) save(images []string) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("failed to encode gallery: %w", err)
	}
	if err := g.repo.Set(namespace, key, string(raw)); err != nil {
		return fmt.Errorf("failed to write gallery: %w", err)
	}
	return nil
}
