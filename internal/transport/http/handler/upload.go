package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type UploadHandler struct {
	uploadService *app.UploadService
}

func NewUploadHandler(uploadService *app.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// Upload accepts exactly one multipart file under the "file" field.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read uploaded file failed")
		return
	}

	result, err := h.uploadService.Upload(c.Request.Context(), app.UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, result)
}
