package app

import (
	"context"
	"sync"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/storage"
)

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	if !overwrite {
		if _, ok := f.objects[key]; ok {
			return storage.ErrKeyExists
		}
	}
	f.objects[key] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

func (f *fakeBlobStore) PublicURL(key string) string {
	return "http://blob.local/documents/" + key
}

func (f *fakeBlobStore) List(_ context.Context) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var objects []storage.ObjectInfo
	for key, data := range f.objects {
		objects = append(objects, storage.ObjectInfo{Key: key, Name: key, Size: int64(len(data))})
	}
	return objects, nil
}

type fakeCompletionClient struct {
	reply        string
	err          error
	calls        int
	lastMessages []ai.ChatMessage
}

func (f *fakeCompletionClient) Complete(_ context.Context, _ ai.RequestConfig, messages []ai.ChatMessage) (string, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeStreamingClient struct {
	events       []ai.StreamEvent
	err          error
	calls        int
	lastMessages []ai.ChatMessage
}

func (f *fakeStreamingClient) Stream(ctx context.Context, _ ai.RequestConfig, messages []ai.ChatMessage) (<-chan ai.StreamEvent, error) {
	f.calls++
	f.lastMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	events := make(chan ai.StreamEvent)
	go func() {
		defer close(events)
		for _, ev := range f.events {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

type fakeAnalysisStore struct {
	created   []*model.Analysis
	createErr error
}

func (f *fakeAnalysisStore) Create(analysis *model.Analysis) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, analysis)
	return nil
}

func (f *fakeAnalysisStore) ListByFileID(fileID string) ([]model.Analysis, error) {
	var out []model.Analysis
	for _, a := range f.created {
		if a.FileID == fileID {
			out = append(out, *a)
		}
	}
	return out, nil
}

type fakeHistoryCache struct {
	mu      sync.Mutex
	history map[uint][]model.ChatMessage
	dirty   map[uint]bool
	sets    int
	hits    int
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{
		history: map[uint][]model.ChatMessage{},
		dirty:   map[uint]bool{},
	}
}

func (f *fakeHistoryCache) GetHistory(_ context.Context, sessionID uint) ([]model.ChatMessage, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages, ok := f.history[sessionID]
	if ok {
		f.hits++
	}
	return messages, ok, nil
}

func (f *fakeHistoryCache) SetHistory(_ context.Context, sessionID uint, messages []model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.history[sessionID] = messages
	return nil
}

func (f *fakeHistoryCache) DeleteHistory(_ context.Context, sessionID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.history, sessionID)
	return nil
}

func (f *fakeHistoryCache) MarkDirty(_ context.Context, sessionID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dirty[sessionID] = true
	return nil
}

func (f *fakeHistoryCache) IsDirty(_ context.Context, sessionID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty[sessionID], nil
}

type fakePublisher struct {
	mu         sync.Mutex
	published  []model.ChatMessage
	publishErr error
}

func (f *fakePublisher) Publish(_ context.Context, msg model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, msg)
	return nil
}
