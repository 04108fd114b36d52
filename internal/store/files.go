// internal/store/files.go
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalFileStore keeps uploaded blobs on disk under <root>/<bucket>/<path>
// and serves them back as /files/<bucket>/<path> URLs.
type LocalFileStore struct {
	root string
}

// NewLocalFileStore creates a file store rooted at the given directory.
func NewLocalFileStore(root string) *LocalFileStore {
	return &LocalFileStore{root: root}
}

// Root returns the directory uploads are written under, for static serving.
func (f *LocalFileStore) Root() string {
	return f.root
}

// UploadFile writes the blob and returns its public URL. Path segments are
// cleaned so an upload can never escape the bucket directory.
func (f *LocalFileStore) UploadFile(_ context.Context, bucket, path string, data []byte) (string, error) {
	if bucket == "" || path == "" {
		return "", fmt.Errorf("upload file: bucket and path are required")
	}
	clean := filepath.Clean("/" + path)
	dest := filepath.Join(f.root, bucket, clean)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("upload file: create dir: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmp := dest + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("upload file: write: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("upload file: rename: %w", err)
	}

	return "/files/" + bucket + strings.ReplaceAll(clean, string(filepath.Separator), "/"), nil
}
