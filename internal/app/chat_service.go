package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/pkg/textextract"
	"docuchat/internal/repository"
	"docuchat/internal/storage"
)

const chatContextTemplate = "You are a helpful assistant analyzing this document: %s"

// StreamingClient is the streaming side of the LLM API.
type StreamingClient interface {
	Stream(ctx context.Context, cfg ai.RequestConfig, messages []ai.ChatMessage) (<-chan ai.StreamEvent, error)
}

// AsyncMessagePublisher enqueues chat messages for out-of-band persistence.
type AsyncMessagePublisher interface {
	Publish(ctx context.Context, msg model.ChatMessage) error
}

// HistoryCache fronts transcript reads.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint) ([]model.ChatMessage, bool, error)
	SetHistory(ctx context.Context, sessionID uint, messages []model.ChatMessage) error
	DeleteHistory(ctx context.Context, sessionID uint) error
	MarkDirty(ctx context.Context, sessionID uint) error
	IsDirty(ctx context.Context, sessionID uint) (bool, error)
}

type ChatService struct {
	sessionRepo  *repository.ChatSessionRepository
	messageRepo  *repository.ChatMessageRepository
	publisher    AsyncMessagePublisher
	historyCache HistoryCache
	blob         storage.BlobStore
	llm          StreamingClient
	reqConfig    ai.RequestConfig
}

type CreateSessionInput struct {
	Title  string
	FileID string
}

type StreamChatInput struct {
	FileID    string
	Message   string
	SessionID uint
}

func NewChatService(
	sessionRepo *repository.ChatSessionRepository,
	messageRepo *repository.ChatMessageRepository,
	publisher AsyncMessagePublisher,
	historyCache HistoryCache,
	blob storage.BlobStore,
	llm StreamingClient,
	reqConfig ai.RequestConfig,
) *ChatService {
	return &ChatService{
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		publisher:    publisher,
		historyCache: historyCache,
		blob:         blob,
		llm:          llm,
		reqConfig:    reqConfig,
	}
}

func (s *ChatService) CreateSession(input CreateSessionInput) (*model.ChatSession, error) {
	if strings.TrimSpace(input.FileID) == "" {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "New Chat"
	}

	session := &model.ChatSession{
		Title:  title,
		FileID: strings.TrimSpace(input.FileID),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *ChatService) ListSessions() ([]model.ChatSession, error) {
	return s.sessionRepo.List()
}

// DeleteSession removes a session and cascades to its messages before the
// session row goes away, then drops any cached transcript.
func (s *ChatService) DeleteSession(sessionID uint) error {
	if sessionID == 0 {
		return ErrInvalidInput
	}
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if err := s.messageRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByID(sessionID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(context.Background(), sessionID)
	}
	return nil
}

func (s *ChatService) GetHistory(ctx context.Context, sessionID uint, limit int) ([]model.ChatMessage, error) {
	if sessionID == 0 {
		return nil, ErrInvalidInput
	}

	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.messageRepo.ListBySessionID(sessionID, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, sessionID, messages)
		}
	}
	return messages, nil
}

// StreamChat fetches the referenced document, seeds a streaming completion
// with the document text plus the caller's message, and forwards each text
// fragment to sink in arrival order. sink is first called only after the
// upstream stream has opened, so every failure before that point surfaces as
// a plain error. A mid-stream upstream failure is returned after the
// fragments delivered so far; sink errors (caller gone) abort the relay.
// When a session is given, both turns are enqueued for persistence.
func (s *ChatService) StreamChat(ctx context.Context, input StreamChatInput, sink func(chunk string) error) (string, error) {
	message := strings.TrimSpace(input.Message)
	if strings.TrimSpace(input.FileID) == "" || message == "" {
		return "", ErrInvalidInput
	}

	data, err := s.blob.Get(ctx, input.FileID)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, input.FileID)
		}
		return "", fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	text := textextract.Decode(data, "", input.FileID)

	if input.SessionID != 0 {
		session, err := s.sessionRepo.GetByID(input.SessionID)
		if err != nil {
			return "", err
		}
		if session == nil {
			return "", ErrSessionNotFound
		}
		if s.historyCache != nil {
			_ = s.historyCache.MarkDirty(ctx, input.SessionID)
			_ = s.historyCache.DeleteHistory(ctx, input.SessionID)
		}
		if err := s.publishMessage(ctx, input.SessionID, model.RoleUser, message); err != nil {
			return "", err
		}
	}

	events, err := s.llm.Stream(ctx, s.reqConfig, []ai.ChatMessage{
		{Role: model.RoleAssistant, Content: fmt.Sprintf(chatContextTemplate, text)},
		{Role: model.RoleUser, Content: message},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChatStream, err)
	}

	var full strings.Builder
	for event := range events {
		switch event.Type {
		case ai.EventText:
			full.WriteString(event.Text)
			if err := sink(event.Text); err != nil {
				return full.String(), fmt.Errorf("forward chunk failed: %w", err)
			}
		case ai.EventError:
			return full.String(), fmt.Errorf("%w: %v", ErrChatStream, event.Err)
		case ai.EventDone:
			if input.SessionID != 0 {
				if err := s.publishMessage(ctx, input.SessionID, model.RoleAssistant, full.String()); err != nil {
					return full.String(), err
				}
			}
			return full.String(), nil
		}
	}
	// Channel closed without a terminal event; only reachable when the
	// request context is cancelled mid-stream.
	return full.String(), fmt.Errorf("%w: %v", ErrChatStream, ctx.Err())
}

func (s *ChatService) publishMessage(ctx context.Context, sessionID uint, role, content string) error {
	if s.publisher == nil {
		return ErrMessageEnqueue
	}
	msg := model.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMessageEnqueue, err)
	}
	return nil
}

func trimMessages(messages []model.ChatMessage, limit int) []model.ChatMessage {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
