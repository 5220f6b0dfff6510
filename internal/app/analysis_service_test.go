package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/ai"
)

func newAnalysisFixture() (*fakeBlobStore, *fakeCompletionClient, *fakeAnalysisStore, *AnalysisService) {
	blob := newFakeBlobStore()
	llm := &fakeCompletionClient{reply: "This document covers quarterly results."}
	store := &fakeAnalysisStore{}
	svc := NewAnalysisService(blob, llm, store, ai.RequestConfig{Model: "test-model", MaxTokens: 1000})
	return blob, llm, store, svc
}

func TestAnalysisService_Analyze(t *testing.T) {
	blob, llm, store, svc := newAnalysisFixture()
	blob.objects["123-report.txt"] = []byte("quarterly results were strong")

	payload, err := svc.Analyze(context.Background(), AnalyzeInput{
		FileID:   "123-report.txt",
		FileURL:  "http://blob.local/documents/123-report.txt",
		FileName: "report.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, "This document covers quarterly results.", payload.Summary)
	assert.NotEmpty(t, payload.KeyPoints)
	assert.NotEmpty(t, payload.Sentiment)
	assert.NotEmpty(t, payload.Topics)

	// The prompt embeds the decoded document text.
	require.Equal(t, 1, llm.calls)
	require.Len(t, llm.lastMessages, 1)
	assert.Contains(t, llm.lastMessages[0].Content, "quarterly results were strong")

	// Persisted record carries the input identifier and the payload.
	require.Len(t, store.created, 1)
	record := store.created[0]
	assert.Equal(t, "123-report.txt", record.FileID)
	assert.Equal(t, "report.txt", record.FileName)
	assert.NotEmpty(t, record.AnalysisResult().Summary)
}

func TestAnalysisService_MissingFieldsMakeNoUpstreamCall(t *testing.T) {
	blob, llm, _, svc := newAnalysisFixture()
	blob.objects["123-a.txt"] = []byte("text")

	for _, input := range []AnalyzeInput{
		{FileURL: "u", FileName: "n"},
		{FileID: "123-a.txt", FileName: "n"},
		{FileID: "123-a.txt", FileURL: "u"},
	} {
		_, err := svc.Analyze(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	assert.Zero(t, llm.calls)
}

func TestAnalysisService_DocumentNotFound(t *testing.T) {
	_, llm, _, svc := newAnalysisFixture()

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		FileID: "missing", FileURL: "u", FileName: "n",
	})
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Zero(t, llm.calls)
}

func TestAnalysisService_UpstreamFailure(t *testing.T) {
	blob, llm, store, svc := newAnalysisFixture()
	blob.objects["123-a.txt"] = []byte("text")
	llm.err = errors.New("rate limited")

	_, err := svc.Analyze(context.Background(), AnalyzeInput{
		FileID: "123-a.txt", FileURL: "u", FileName: "n",
	})
	assert.ErrorIs(t, err, ErrAnalysisRequest)
	assert.Empty(t, store.created)
}

func TestAnalysisService_PersistFailureStillReturnsAnalysis(t *testing.T) {
	blob, _, store, svc := newAnalysisFixture()
	blob.objects["123-a.txt"] = []byte("text")
	store.createErr = errors.New("db down")

	payload, err := svc.Analyze(context.Background(), AnalyzeInput{
		FileID: "123-a.txt", FileURL: "u", FileName: "n",
	})
	require.NoError(t, err)
	assert.False(t, strings.TrimSpace(payload.Summary) == "")
}
