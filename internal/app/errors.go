package app

import "errors"

// Pipeline error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; nothing below this package inspects transport concerns.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDocumentNotFound = errors.New("document not found")
	ErrStorageRead      = errors.New("storage read failed")
	ErrStorageWrite     = errors.New("storage write failed")
	ErrAnalysisRequest  = errors.New("analysis request failed")
	ErrChatStream       = errors.New("chat stream failed")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMessageEnqueue   = errors.New("message enqueue failed")
)
