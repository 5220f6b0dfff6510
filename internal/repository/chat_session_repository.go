package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type ChatSessionRepository struct {
	db *gorm.DB
}

func NewChatSessionRepository(db *gorm.DB) *ChatSessionRepository {
	return &ChatSessionRepository{db: db}
}

func (r *ChatSessionRepository) Create(session *model.ChatSession) error {
	if err := r.db.Create(session).Error; err != nil {
		return fmt.Errorf("create chat session failed: %w", err)
	}
	return nil
}

func (r *ChatSessionRepository) List() ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.Order("updated_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list chat sessions failed: %w", err)
	}
	return sessions, nil
}

func (r *ChatSessionRepository) GetByID(sessionID uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat session failed: %w", err)
	}
	return &session, nil
}

func (r *ChatSessionRepository) DeleteByID(sessionID uint) error {
	if err := r.db.Delete(&model.ChatSession{}, sessionID).Error; err != nil {
		return fmt.Errorf("delete chat session failed: %w", err)
	}
	return nil
}
