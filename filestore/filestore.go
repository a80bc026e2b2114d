// Package filestore saves uploaded images and removes them when their record
// changes. References returned by Save are what gets persisted on documents.
package filestore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bookmarket/logger"
)

// Upload is one file received from a multipart form.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Store is implemented by Local and GCS.
type Store interface {
	Save(ctx context.Context, f Upload, folder string) (string, error)
	Remove(ctx context.Context, ref string) error
}

// objectName builds folder/uuid_nanos.ext so that names never collide.
func objectName(folder string, f Upload) string {
	return fmt.Sprintf("%s/%s_%d.%s", folder, uuid.NewString(), time.Now().UnixNano(), extension(f))
}

func extension(f Upload) string {
	switch strings.ToLower(f.ContentType) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpeg"
	case "image/gif":
		return "gif"
	case "application/pdf":
		return "pdf"
	}
	if ext := strings.TrimPrefix(path.Ext(f.Filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	logger.L().Warn("unsupported content type, defaulting to .jpg", zap.String("content_type", f.ContentType))
	return "jpg"
}

func contentType(f Upload) string {
	if f.ContentType == "" {
		return "image/jpeg"
	}
	return f.ContentType
}
