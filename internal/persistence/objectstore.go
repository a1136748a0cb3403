package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/config"
)

// ObjectStore keeps complaint images in an S3-compatible bucket.
type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

// NewObjectStore connects to the bucket endpoint. A missing endpoint yields a
// nil store and uploads are then rejected by the service.
func NewObjectStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		logger.Warn("STORAGE_ENDPOINT not provided; image uploads disabled")
		return nil, nil
	}

	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL
	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	store := &ObjectStore{client: client, cfg: cfg}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("connected to object storage", zap.String("bucket", cfg.Bucket))
	return store, nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	return nil
}

// Put uploads an object and returns the reference stored on the complaint.
func (s *ObjectStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s == nil {
		return "", errors.New("object storage not configured")
	}
	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.publicURL(key), nil
}

// Remove deletes the object behind a reference produced by Put.
func (s *ObjectStore) Remove(ctx context.Context, ref string) error {
	if s == nil {
		return errors.New("object storage not configured")
	}
	key := s.keyFromRef(ref)
	if key == "" {
		return nil
	}
	return s.client.RemoveObject(ctx, s.cfg.Bucket, key, minio.RemoveObjectOptions{})
}

func (s *ObjectStore) baseURL() string {
	base := strings.TrimSuffix(s.cfg.PublicBaseURL, "/")
	if base == "" {
		base = strings.TrimSuffix(s.cfg.Endpoint, "/")
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			scheme := "http://"
			if s.cfg.UseSSL {
				scheme = "https://"
			}
			base = scheme + base
		}
		base += "/" + s.cfg.Bucket
	}
	return base
}

func (s *ObjectStore) publicURL(key string) string {
	return s.baseURL() + "/" + key
}

func (s *ObjectStore) keyFromRef(ref string) string {
	return strings.TrimPrefix(strings.TrimPrefix(ref, s.baseURL()), "/")
}
