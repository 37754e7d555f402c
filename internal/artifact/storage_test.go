package artifact

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"syllabus-content-service/internal/config"
)

func TestLocalPutOpenExists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	l := NewLocal(dir)

	path, size, err := l.Put(ctx, "content_1.pdf", []byte("hello"), "application/pdf")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if size != 5 {
		t.Fatalf("expected size 5 got %d", size)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected file under %s, got %s", dir, path)
	}

	ok, err := l.Exists(ctx, path)
	if err != nil || !ok {
		t.Fatalf("expected artifact to exist, ok=%v err=%v", ok, err)
	}

	rc, err := l.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestLocalMissing(t *testing.T) {
	ctx := context.Background()
	l := NewLocal(t.TempDir())
	path, _, _ := l.Put(ctx, "gone.latex", []byte("x"), "text/plain")
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	ok, err := l.Exists(ctx, path)
	if err != nil || ok {
		t.Fatalf("expected missing artifact, ok=%v err=%v", ok, err)
	}
	if _, err := l.Open(ctx, path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}

func TestSanitizeKeyStaysInBase(t *testing.T) {
	if got := sanitizeKey("../../etc/passwd"); got != filepath.Join("etc", "passwd") {
		t.Fatalf("unexpected key %q", got)
	}
	if got := sanitizeKey("/abs/file.pdf"); got != filepath.Join("abs", "file.pdf") {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestParseS3Path(t *testing.T) {
	bucket, key, err := parsePath(formatPath("exports", "combined_1.pdf"))
	if err != nil || bucket != "exports" || key != "combined_1.pdf" {
		t.Fatalf("unexpected parse %q %q %v", bucket, key, err)
	}
	if _, _, err := parsePath("/tmp/file.pdf"); err == nil {
		t.Fatalf("expected error for local path")
	}
}

func TestNewRejectsS3WithoutBucket(t *testing.T) {
	if _, err := New(context.Background(), config.Config{ArtifactBackend: "s3"}); err == nil {
		t.Fatalf("expected error without bucket")
	}
	if _, err := New(context.Background(), config.Config{ArtifactBackend: "ftp"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
