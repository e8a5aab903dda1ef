// Package documents holds the source contract documents in object storage.
// The intake webhook writes them; the files population stage streams them
// into the case-management system.
package documents

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"matter_pipeline_backend/platform/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store reads and writes source documents. Stage handlers depend on this
// interface so tests can serve document bytes from memory.
type Store interface {
	Upload(ctx context.Context, bucket, folder, fileName, contentType string, r io.Reader, size int64) (string, error)
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error)
}

// MinIOStore is the MinIO-backed Store.
type MinIOStore struct {
	client        *minio.Client
	defaultBucket string
}

// NewMinIOStore creates the store and ensures the source-documents bucket
// exists.
func NewMinIOStore(ctx context.Context, cfg config.MinIOConfig) (*MinIOStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	s := &MinIOStore{client: client, defaultBucket: cfg.GetMinioBucketSourceDocuments()}
	if err := s.ensureBucketExists(ctx, s.defaultBucket); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultBucket returns the configured source-documents bucket.
func (s *MinIOStore) DefaultBucket() string {
	return s.defaultBucket
}

func (s *MinIOStore) ensureBucketExists(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// Upload stores a document under a unique key and returns that key.
func (s *MinIOStore) Upload(ctx context.Context, bucket, folder, fileName, contentType string, r io.Reader, size int64) (string, error) {
	ext := path.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	uniqueFileName := fmt.Sprintf("%s_%s%s", baseName, uuid.New().String()[:8], ext)
	key := filepath.ToSlash(filepath.Join(folder, uniqueFileName))

	_, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// Download streams a stored document. The caller closes the reader.
func (s *MinIOStore) Download(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get object %s: %w", key, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return obj, stat.Size, nil
}

var _ Store = (*MinIOStore)(nil)
