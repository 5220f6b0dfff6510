package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"docuchat/internal/ai"
	"docuchat/internal/model"
	"docuchat/internal/pkg/textextract"
	"docuchat/internal/storage"
)

const analysisPromptTemplate = `Analyze this document and provide:
1. A brief summary
2. Key points
3. Overall sentiment
4. Main topics discussed

Document content:
%s`

// CompletionClient is the single-shot side of the LLM API.
type CompletionClient interface {
	Complete(ctx context.Context, cfg ai.RequestConfig, messages []ai.ChatMessage) (string, error)
}

// AnalysisStore persists and queries analysis records.
type AnalysisStore interface {
	Create(analysis *model.Analysis) error
	ListByFileID(fileID string) ([]model.Analysis, error)
}

type AnalysisService struct {
	blob      storage.BlobStore
	llm       CompletionClient
	analyses  AnalysisStore
	reqConfig ai.RequestConfig
}

type AnalyzeInput struct {
	FileID   string
	FileURL  string
	FileName string
}

func NewAnalysisService(blob storage.BlobStore, llm CompletionClient, analyses AnalysisStore, reqConfig ai.RequestConfig) *AnalysisService {
	return &AnalysisService{
		blob:      blob,
		llm:       llm,
		analyses:  analyses,
		reqConfig: reqConfig,
	}
}

// Analyze fetches the stored document, runs it through the LLM with a fixed
// analysis prompt, and persists the shaped result. The model reply lands in
// the summary field as-is; key points, sentiment and topics are fixed
// placeholders until the prompt asks for structured output. Persistence is
// best effort: a failed insert is logged and the analysis still returned.
func (s *AnalysisService) Analyze(ctx context.Context, input AnalyzeInput) (*model.AnalysisPayload, error) {
	if strings.TrimSpace(input.FileID) == "" ||
		strings.TrimSpace(input.FileURL) == "" ||
		strings.TrimSpace(input.FileName) == "" {
		return nil, ErrInvalidInput
	}

	data, err := s.blob.Get(ctx, input.FileID)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, input.FileID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}

	text := textextract.Decode(data, "", input.FileName)

	summary, err := s.llm.Complete(ctx, s.reqConfig, []ai.ChatMessage{
		{Role: model.RoleUser, Content: fmt.Sprintf(analysisPromptTemplate, text)},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisRequest, err)
	}

	payload := model.AnalysisPayload{
		Summary:   summary,
		KeyPoints: []string{"See summary"},
		Sentiment: "Neutral",
		Topics:    []string{"Document Analysis"},
	}

	record := &model.Analysis{
		FileID:    input.FileID,
		FileName:  input.FileName,
		FileURL:   input.FileURL,
		CreatedAt: time.Now(),
	}
	record.SetPayload(payload)
	if err := s.analyses.Create(record); err != nil {
		logrus.WithError(err).WithField("file_id", input.FileID).Error("persist analysis failed")
	}

	return &payload, nil
}

// ListByFileID returns prior analyses for a document, newest first.
func (s *AnalysisService) ListByFileID(fileID string) ([]model.Analysis, error) {
	if strings.TrimSpace(fileID) == "" {
		return nil, ErrInvalidInput
	}
	return s.analyses.ListByFileID(fileID)
}
