// Package gcs stores generated files in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/polkiloo/dealerflow/internal/domain/model"
)

// uploader writes one object.
type uploader interface {
	Upload(ctx context.Context, bucket, object, contentType string, content []byte) error
}

type bucketUploader struct {
	client *storage.Client
}

func (u bucketUploader) Upload(ctx context.Context, bucket, object, contentType string, content []byte) error {
	wc := u.client.Bucket(bucket).Object(object).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(content); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return nil
}

// FileStore keeps files under one bucket.
type FileStore struct {
	bucket   string
	uploader uploader
	logger   *slog.Logger
	now      func() time.Time
}

// NewFileStore creates a FileStore on top of a storage client.
func NewFileStore(client *storage.Client, bucket string, logger *slog.Logger) *FileStore {
	return &FileStore{bucket: bucket, uploader: bucketUploader{client: client}, logger: logger, now: time.Now}
}

// Store uploads content as object name and returns its handle.
func (s *FileStore) Store(ctx context.Context, content []byte, name, kind string) (model.FileHandle, error) {
	if err := s.uploader.Upload(ctx, s.bucket, name, contentType(name, content), content); err != nil {
		return model.FileHandle{}, fmt.Errorf("upload %s: %w", name, err)
	}
	s.logger.Debug("file stored", slog.String("bucket", s.bucket), slog.String("object", name))
	return model.FileHandle{
		Name:      path.Base(name),
		Path:      fmt.Sprintf("gs://%s/%s", s.bucket, name),
		Kind:      kind,
		CreatedAt: s.now().UTC(),
	}, nil
}

func contentType(name string, content []byte) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(content)
}
