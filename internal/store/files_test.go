package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUploadFileWritesAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	f := NewLocalFileStore(root)

	url, err := f.UploadFile(context.Background(), "chat-attachments", "sess-1/photo.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if url != "/files/chat-attachments/sess-1/photo.jpg" {
		t.Errorf("url = %q", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "chat-attachments", "sess-1", "photo.jpg"))
	if err != nil {
		t.Fatalf("read uploaded blob: %v", err)
	}
	if string(data) != "jpeg" {
		t.Errorf("blob = %q", data)
	}
}

func TestUploadFileOverwrites(t *testing.T) {
	f := NewLocalFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := f.UploadFile(ctx, "b", "doc.txt", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.UploadFile(ctx, "b", "doc.txt", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join(f.Root(), "b", "doc.txt"))
	if string(data) != "v2" {
		t.Errorf("blob = %q, want the newer write", data)
	}
}

func TestUploadFileCannotEscapeBucket(t *testing.T) {
	root := t.TempDir()
	f := NewLocalFileStore(root)

	url, err := f.UploadFile(context.Background(), "b", "../../outside.txt", []byte("x"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if strings.Contains(url, "..") {
		t.Errorf("url = %q, traversal segments must be cleaned", url)
	}
	if _, err := os.Stat(filepath.Join(root, "b", "outside.txt")); err != nil {
		t.Errorf("cleaned blob missing under the bucket: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "outside.txt")); err == nil {
		t.Error("blob escaped the store root")
	}
}

func TestUploadFileRequiresBucketAndPath(t *testing.T) {
	f := NewLocalFileStore(t.TempDir())
	if _, err := f.UploadFile(context.Background(), "", "p", nil); err == nil {
		t.Error("empty bucket must be rejected")
	}
	if _, err := f.UploadFile(context.Background(), "b", "", nil); err == nil {
		t.Error("empty path must be rejected")
	}
}
