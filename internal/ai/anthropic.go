package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const anthropicVersion = "2023-06-01"

var ErrRateLimited = errors.New("llm rate limited")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RequestConfig struct {
	Model     string
	MaxTokens int
}

// StreamEventType tags the events of a streaming completion. A stream emits
// zero or more text events followed by exactly one terminal done or error
// event, after which the channel is closed.
type StreamEventType int

const (
	EventText StreamEventType = iota
	EventError
	EventDone
)

type StreamEvent struct {
	Type StreamEventType
	Text string
	Err  error
}

type AnthropicClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewAnthropicClient(baseURL, apiKey string, timeout time.Duration) *AnthropicClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &AnthropicClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []ChatMessage `json:"messages"`
	Stream    bool          `json:"stream,omitempty"`
}

// Complete issues a single-shot completion and returns the concatenated text
// of the reply.
func (c *AnthropicClient) Complete(ctx context.Context, cfg RequestConfig, messages []ChatMessage) (string, error) {
	bodyBytes, err := json.Marshal(messagesRequest{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal llm request failed: %w", err)
	}

	req, err := c.newRequest(ctx, bodyBytes)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read llm response failed: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse llm json failed: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty llm content")
	}

	var full strings.Builder
	for _, block := range parsed.Content {
		full.WriteString(block.Text)
	}
	return full.String(), nil
}

// Stream issues a streaming completion. Request setup failures are returned
// synchronously; everything after the stream opens arrives on the returned
// channel. Sends are unbuffered so a slow consumer suspends upstream reads.
func (c *AnthropicClient) Stream(ctx context.Context, cfg RequestConfig, messages []ChatMessage) (<-chan StreamEvent, error) {
	bodyBytes, err := json.Marshal(messagesRequest{
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		Messages:  messages,
		Stream:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal llm stream request failed: %w", err)
	}

	req, err := c.newRequest(ctx, bodyBytes)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm stream request failed: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("llm stream status %d: %s", resp.StatusCode, string(raw))
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		defer resp.Body.Close()
		c.consumeStream(ctx, resp.Body, events)
	}()
	return events, nil
}

func (c *AnthropicClient) consumeStream(ctx context.Context, body io.Reader, events chan<- StreamEvent) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)

	emit := func(ev StreamEvent) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))

		var event struct {
			Type  string `json:"type"`
			Delta struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"delta"`
			Error struct {
				Type    string `json:"type"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Type != "text_delta" || event.Delta.Text == "" {
				continue
			}
			if !emit(StreamEvent{Type: EventText, Text: event.Delta.Text}) {
				return
			}
		case "error":
			emit(StreamEvent{Type: EventError, Err: fmt.Errorf("llm stream error: %s: %s", event.Error.Type, event.Error.Message)})
			return
		case "message_stop":
			emit(StreamEvent{Type: EventDone})
			return
		}
	}
	if err := scanner.Err(); err != nil {
		emit(StreamEvent{Type: EventError, Err: fmt.Errorf("scan llm stream failed: %w", err)})
		return
	}
	// Upstream closed without a message_stop. Treat as an error so callers
	// can tell a finished stream from a truncated one.
	emit(StreamEvent{Type: EventError, Err: errors.New("llm stream ended without terminal event")})
}

func (c *AnthropicClient) newRequest(ctx context.Context, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build llm request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}
