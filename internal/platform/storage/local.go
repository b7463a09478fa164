// Package storage stores uploaded files on the local filesystem and
// serves them back over HTTP. The object storage interface consumed by
// the domain services keeps the door open for an S3-style backend.
package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local writes uploads under Dir and returns URLs below BaseURL.
type Local struct {
	dir     string
	baseURL string
}

// NewLocal creates the upload directory if needed.
func NewLocal(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload stores data under a collision-free name and returns its URL.
func (l *Local) Upload(_ context.Context, name string, data []byte) (string, error) {
	ext := filepath.Ext(name)
	filename := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(l.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return l.baseURL + "/" + filename, nil
}

// Delete removes the named objects. Unknown URLs are skipped.
func (l *Local) Delete(_ context.Context, urls []string) error {
	var firstErr error
	for _, u := range urls {
		filename := path.Base(u)
		if filename == "." || filename == "/" {
			continue
		}
		if err := os.Remove(filepath.Join(l.dir, filename)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
