package htmlshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Sink receives the images of a capture run, one at a time and in part
// order. Save returns the location the image was written to.
type Sink interface {
	Save(ctx context.Context, img *Image) (string, error)
}

// DirSink writes images as files into Dir, creating it when needed.
type DirSink struct {
	Dir  string
	Perm os.FileMode // defaults to 0o644
}

// Save writes img to Dir/<img.Name>.
func (s DirSink) Save(ctx context.Context, img *Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("htmlshot: creating directory %q: %w", dir, err)
	}
	perm := s.Perm
	if perm == 0 {
		perm = 0o644
	}
	path := filepath.Join(dir, img.Name)
	if err := img.WriteToFile(path, perm); err != nil {
		return "", fmt.Errorf("htmlshot: writing %s: %w", path, err)
	}
	return path, nil
}

// MemorySink keeps images in memory. It is safe for concurrent use.
type MemorySink struct {
	mu     sync.Mutex
	images []*Image
}

// Save records img and returns its name.
func (s *MemorySink) Save(ctx context.Context, img *Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	s.images = append(s.images, img)
	s.mu.Unlock()
	return img.Name, nil
}

// Images returns the images saved so far.
func (s *MemorySink) Images() []*Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Image(nil), s.images...)
}

// DiscardSink drops every image. Useful when the caller only needs the
// returned [Result].
type DiscardSink struct{}

// Save returns the image name without storing anything.
func (DiscardSink) Save(_ context.Context, img *Image) (string, error) {
	return img.Name, nil
}
