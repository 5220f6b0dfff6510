package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/storage"
	"docuchat/internal/transport/http/response"
)

type DocumentHandler struct {
	blob storage.BlobStore
}

type documentView struct {
	FileID    string    `json:"file_id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewDocumentHandler(blob storage.BlobStore) *DocumentHandler {
	return &DocumentHandler{blob: blob}
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	objects, err := h.blob.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	views := make([]documentView, 0, len(objects))
	for _, obj := range objects {
		views = append(views, documentView{
			FileID:    obj.Key,
			Name:      obj.Name,
			Size:      obj.Size,
			URL:       h.blob.PublicURL(obj.Key),
			CreatedAt: obj.CreatedAt,
		})
	}
	response.OK(c, views)
}
