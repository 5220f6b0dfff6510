package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docuchat/internal/app"
	"docuchat/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type ChatStreamRequest struct {
	FileID    string `json:"file_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
	SessionID uint   `json:"session_id"`
}

type CreateSessionRequest struct {
	Title  string `json:"title" binding:"max=128"`
	FileID string `json:"file_id" binding:"required"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Stream relays the model's reply as an incremental text/event-stream.
// Errors raised before the first fragment arrive as plain JSON statuses;
// once fragments have been written, failures become a terminal error frame
// so the client can tell a finished stream from a broken one.
func (h *ChatHandler) Stream(c *gin.Context) {
	var req ChatStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	streaming := false
	openStream := func() {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.Writer.WriteHeader(http.StatusOK)
		streaming = true
	}

	_, err := h.chatService.StreamChat(c.Request.Context(), app.StreamChatInput{
		FileID:    req.FileID,
		Message:   req.Message,
		SessionID: req.SessionID,
	}, func(chunk string) error {
		if !streaming {
			openStream()
		}
		// Fragments pass through verbatim; a finished stream is just the
		// concatenated reply with no trailing marker.
		if _, writeErr := c.Writer.Write([]byte(chunk)); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if streaming {
			if _, writeErr := c.Writer.Write([]byte("\n\nevent: error\ndata: " + sanitizeSSE(err.Error()) + "\n\n")); writeErr == nil {
				flusher.Flush()
			}
			return
		}
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrMessageEnqueue):
			response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer, err.Error())
		case errors.Is(err, app.ErrChatStream):
			response.Error(c, http.StatusInternalServerError, response.CodeUpstreamFailed, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "chat failed")
		}
		return
	}

	// A reply with no fragments still ends as an empty, well-formed stream.
	if !streaming {
		openStream()
		flusher.Flush()
	}
}

func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	session, err := h.chatService.CreateSession(app.CreateSessionInput{
		Title:  req.Title,
		FileID: req.FileID,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "create session failed")
		}
		return
	}

	response.OK(c, session)
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list sessions failed")
		return
	}
	response.OK(c, sessions)
}

func (h *ChatHandler) DeleteSession(c *gin.Context) {
	sessionID64, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || sessionID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	if err := h.chatService.DeleteSession(uint(sessionID64)); err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete session failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_session_id": uint(sessionID64)})
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID64, err := strconv.ParseUint(c.Query("session_id"), 10, 64)
	if err != nil || sessionID64 == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session_id")
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.GetHistory(c.Request.Context(), uint(sessionID64), limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}

	response.OK(c, history)
}

func sanitizeSSE(input string) string {
	replaced := strings.ReplaceAll(input, "\r\n", "\\n")
	replaced = strings.ReplaceAll(replaced, "\n", "\\n")
	return replaced
}
