// Package miniostore provides an ObjectStore backed by an S3-compatible
// endpoint via the MinIO client.
package miniostore

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vadviktor/animefeed/internal/config"
	"github.com/vadviktor/animefeed/internal/storage"
)

// Store writes objects to a configured S3/MinIO bucket.
type Store struct {
	client *minio.Client
	cfg    config.StorageConfig

	mu           sync.Mutex
	publicPolicy bool
}

// New creates an S3/MinIO-backed object store.
func New(cfg config.StorageConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &Store{client: client, cfg: cfg}, nil
}

// Exists issues a metadata probe for key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.cfg.Bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

// Put uploads data under key with the given content type and class.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string, class storage.Class) error {
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  contentType,
			StorageClass: string(class),
		})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// SetPublicRead grants anonymous download on the bucket contents. The
// MinIO API has no per-object ACL call, so this installs a read-only
// bucket policy once per process and is a no-op afterwards.
func (s *Store) SetPublicRead(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicPolicy {
		return nil
	}

	policy := fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"AWS": ["*"]},
      "Action": ["s3:GetObject"],
      "Resource": ["arn:aws:s3:::%s/*"]
    }
  ]
}`, s.cfg.Bucket)

	if err := s.client.SetBucketPolicy(ctx, s.cfg.Bucket, policy); err != nil {
		return fmt.Errorf("set public-read for %s: %w", key, err)
	}
	s.publicPolicy = true
	return nil
}

// PublicURL expands the configured URL template for key.
func (s *Store) PublicURL(key string) string {
	return fmt.Sprintf(s.cfg.PublicURLTemplate, s.cfg.Bucket, s.cfg.Region, key)
}
