package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"postboard/internal/config"

	"github.com/google/uuid"
)

// ImageStore keeps post images. Object names are relative, slash-separated
// paths such as "posts/2024/05/<uuid>.png".
type ImageStore interface {
	Save(ctx context.Context, objectName, contentType string, r io.Reader, size int64) error
	Delete(ctx context.Context, objectName string) error
	URL(objectName string) string
}

// NewObjectName builds a unique object name for a post image.
func NewObjectName(ext string) string {
	if ext == "" {
		ext = ".jpg"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	now := time.Now()
	return fmt.Sprintf("posts/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), strings.ToLower(ext))
}

// New picks the backend named by STORAGE_BACKEND.
func New(ctx context.Context, cfg config.Storage) (ImageStore, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	case "minio":
		return NewMinIOStore(ctx, cfg.MinIO)
	}
	return nil, fmt.Errorf("unsupported STORAGE_BACKEND %q", cfg.Backend)
}
