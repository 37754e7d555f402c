package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"syllabus-content-service/internal/config"
)

// ErrNotFound is returned by Open when the artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Storage persists rendered export files.
type Storage interface {
	// Put stores body under key and returns the storage path and the stored byte size.
	Put(ctx context.Context, key string, body []byte, contentType string) (string, int64, error)
	Exists(ctx context.Context, path string) (bool, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// New picks the backend named by cfg.ArtifactBackend.
func New(ctx context.Context, cfg config.Config) (Storage, error) {
	switch strings.ToLower(cfg.ArtifactBackend) {
	case "", "local":
		return NewLocal(cfg.ExportDir), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, errors.New("artifact backend s3 requested but S3_BUCKET is not configured")
		}
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &S3{client: client, bucket: cfg.S3Bucket}, nil
	}
	return nil, fmt.Errorf("unknown artifact backend %q", cfg.ArtifactBackend)
}

// Local writes artifacts below a base directory.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) *Local {
	if baseDir == "" {
		baseDir = "exports"
	}
	return &Local{baseDir: baseDir}
}

func (l *Local) Put(_ context.Context, key string, body []byte, _ string) (string, int64, error) {
	path := filepath.Join(l.baseDir, sanitizeKey(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", 0, fmt.Errorf("create dirs: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat file: %w", err)
	}
	return path, info.Size(), nil
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	return !info.IsDir(), nil
}

func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func sanitizeKey(key string) string {
	key = filepath.Clean("/" + key)
	return strings.TrimPrefix(key, string(filepath.Separator))
}
