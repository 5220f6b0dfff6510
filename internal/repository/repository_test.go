package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"docuchat/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Analysis{}, &model.ChatSession{}, &model.ChatMessage{}))
	return db
}

func TestAnalysisRepository_CreateAndList(t *testing.T) {
	repo := NewAnalysisRepository(newTestDB(t))

	first := &model.Analysis{FileID: "123-a.txt", FileName: "a.txt", FileURL: "http://x/a"}
	first.SetPayload(model.AnalysisPayload{Summary: "first pass"})
	require.NoError(t, repo.Create(first))

	// Re-analysis appends; there is no uniqueness constraint on file_id.
	second := &model.Analysis{FileID: "123-a.txt", FileName: "a.txt", FileURL: "http://x/a"}
	second.SetPayload(model.AnalysisPayload{Summary: "second pass"})
	require.NoError(t, repo.Create(second))

	analyses, err := repo.ListByFileID("123-a.txt")
	require.NoError(t, err)
	assert.Len(t, analyses, 2)

	other, err := repo.ListByFileID("456-b.txt")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestChatMessageRepository_SessionScope(t *testing.T) {
	db := newTestDB(t)
	sessionRepo := NewChatSessionRepository(db)
	messageRepo := NewChatMessageRepository(db)

	one := &model.ChatSession{Title: "one", FileID: "123-a.txt"}
	two := &model.ChatSession{Title: "two", FileID: "123-a.txt"}
	require.NoError(t, sessionRepo.Create(one))
	require.NoError(t, sessionRepo.Create(two))

	for _, m := range []model.ChatMessage{
		{SessionID: one.ID, Role: model.RoleUser, Content: "q1"},
		{SessionID: one.ID, Role: model.RoleAssistant, Content: "a1"},
		{SessionID: two.ID, Role: model.RoleUser, Content: "other"},
	} {
		msg := m
		require.NoError(t, messageRepo.Create(&msg))
	}

	messages, err := messageRepo.ListBySessionID(one.ID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "q1", messages[0].Content)
	assert.Equal(t, "a1", messages[1].Content)

	require.NoError(t, messageRepo.DeleteBySessionID(one.ID))

	empty, err := messageRepo.ListBySessionID(one.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	untouched, err := messageRepo.ListBySessionID(two.ID, 0)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)
}

func TestChatSessionRepository_GetMissingReturnsNil(t *testing.T) {
	repo := NewChatSessionRepository(newTestDB(t))

	session, err := repo.GetByID(99)
	require.NoError(t, err)
	assert.Nil(t, session)
}
