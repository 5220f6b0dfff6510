package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"docuchat/internal/storage"
)

type UploadService struct {
	blob storage.BlobStore
}

type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	FileID  string `json:"file_id"`
	FileURL string `json:"file_url"`
}

func NewUploadService(blob storage.BlobStore) *UploadService {
	return &UploadService{blob: blob}
}

// Upload stores the file bytes under a timestamped key and returns the key
// plus its public URL. Existing objects are never overwritten; the unique
// key makes two uploads of the same file name land on distinct objects.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	name := strings.TrimSpace(input.FileName)
	if name == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}

	key := fmt.Sprintf("%d-%s", uniqueStamp(), name)
	if err := s.blob.Put(ctx, key, input.Data, input.ContentType, false); err != nil {
		if errors.Is(err, storage.ErrKeyExists) {
			return nil, fmt.Errorf("%w: key %q taken", ErrStorageWrite, key)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	return &UploadResult{
		FileID:  key,
		FileURL: s.blob.PublicURL(key),
	}, nil
}

var lastStamp int64

// uniqueStamp returns strictly increasing millisecond timestamps so that two
// uploads of the same file name in the same millisecond still get distinct
// keys.
func uniqueStamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastStamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastStamp, last, now) {
			return now
		}
	}
}
