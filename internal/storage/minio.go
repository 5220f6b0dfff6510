package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"docuchat/internal/config"
)

// minioStore implements BlobStore on an S3-compatible backend. Safe for
// concurrent use.
type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinIO connects to the configured MinIO endpoint and ensures the bucket
// exists, creating it if missing.
func NewMinIO(ctx context.Context, cfg config.MinIOConfig) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client failed: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket failed: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(checkCtx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket failed: %w", err)
		}
	}

	return &minioStore{client: cli, bucket: cfg.Bucket}, nil
}

func (s *minioStore) Put(ctx context.Context, key string, data []byte, contentType string, overwrite bool) error {
	if !overwrite {
		// MinIO has no conditional put on this client version, so existence
		// is checked first. Keys carry a millisecond timestamp prefix, which
		// keeps the check-then-put race window irrelevant in practice.
		_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
		if err == nil {
			return ErrKeyExists
		}
		if minio.ToErrorResponse(err).Code != "NoSuchKey" {
			return fmt.Errorf("stat object failed: %w", err)
		}
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object failed: %w", err)
	}
	return nil
}

func (s *minioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object failed: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("read object failed: %w", err)
	}
	return data, nil
}

func (s *minioStore) PublicURL(key string) string {
	endpoint := strings.TrimRight(s.client.EndpointURL().String(), "/")
	return fmt.Sprintf("%s/%s/%s", endpoint, s.bucket, key)
}

func (s *minioStore) List(ctx context.Context) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects failed: %w", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:       obj.Key,
			Name:      displayName(obj.Key),
			Size:      obj.Size,
			CreatedAt: obj.LastModified,
		})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].CreatedAt.After(objects[j].CreatedAt)
	})
	return objects, nil
}

// displayName strips the timestamp prefix the upload pipeline prepends.
func displayName(key string) string {
	if idx := strings.Index(key, "-"); idx > 0 && idx < len(key)-1 {
		prefix := key[:idx]
		allDigits := true
		for _, r := range prefix {
			if r < '0' || r > '9' {
				allDigits = false
				break
			}
		}
		if allDigits {
			return key[idx+1:]
		}
	}
	return key
}
