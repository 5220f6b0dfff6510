package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/model"
	"docuchat/internal/transport/http/response"
)

type AnalysisHandler struct {
	analysisService *app.AnalysisService
}

type AnalyzeRequest struct {
	FileID   string `json:"file_id" binding:"required"`
	FileURL  string `json:"file_url" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
}

type analysisView struct {
	ID        uint                  `json:"id"`
	FileID    string                `json:"file_id"`
	FileName  string                `json:"file_name"`
	FileURL   string                `json:"file_url"`
	Analysis  model.AnalysisPayload `json:"analysis"`
	CreatedAt time.Time             `json:"created_at"`
}

func NewAnalysisHandler(analysisService *app.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	payload, err := h.analysisService.Analyze(c.Request.Context(), app.AnalyzeInput{
		FileID:   req.FileID,
		FileURL:  req.FileURL,
		FileName: req.FileName,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrAnalysisRequest):
			response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "analyze document failed")
		}
		return
	}

	response.OK(c, payload)
}

func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	fileID := c.Query("file_id")

	analyses, err := h.analysisService.ListByFileID(fileID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file_id is required")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list analyses failed")
		}
		return
	}

	views := make([]analysisView, 0, len(analyses))
	for _, a := range analyses {
		views = append(views, analysisView{
			ID:        a.ID,
			FileID:    a.FileID,
			FileName:  a.FileName,
			FileURL:   a.FileURL,
			Analysis:  a.AnalysisResult(),
			CreatedAt: a.CreatedAt,
		})
	}
	response.OK(c, views)
}
