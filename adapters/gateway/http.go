package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

const (
	defaultBaseURL = "http://localhost:8000"
	defaultTimeout = 60 * time.Second

	// Field names the backend expects.
	audioField    = "audio"
	textField     = "text"
	languageField = "language"
)

// Config holds configuration for the backend HTTP client.
type Config struct {
	BaseURL string        // Required: backend base URL
	Timeout time.Duration // Optional: per-request timeout
}

// Client talks to the conversation backend over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Ensure Client implements the Gateway interface
var _ repositories.Gateway = (*Client)(nil)

// chatReplyWire mirrors the backend's reply JSON.
type chatReplyWire struct {
	SessionID        string `json:"session_id"`
	Transcription    string `json:"transcription"`
	DetectedLanguage string `json:"detected_language"`
	UserMessage      string `json:"user_message"`
	Response         string `json:"response"`
	ResponseLanguage string `json:"response_language"`
	AudioURL         string `json:"audio_url"`
}

// NewClient creates a backend client, applying defaults where needed.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
		logger.Info("Using default backend URL", zap.String("baseURL", baseURL))
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("backend base URL %q must be absolute", baseURL)
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// VoiceChat submits a finalized recording as multipart form data and
// returns the backend's reply.
func (c *Client) VoiceChat(ctx context.Context, audio []byte) (*repositories.ChatReply, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(audioField, "recording.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/chat"), &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.Info("Submitting voice recording",
		zap.Int("bytes", len(audio)))

	return c.doChat(req)
}

// TextChat submits a typed message as form data and returns the
// backend's reply.
func (c *Client) TextChat(ctx context.Context, text, language string) (*repositories.ChatReply, error) {
	form := url.Values{}
	form.Set(textField, text)
	if language != "" {
		form.Set(languageField, language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/text-chat"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.doChat(req)
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/health"), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend health returned %d", resp.StatusCode)
	}
	return nil
}

// Languages fetches the supported language table from the backend.
func (c *Client) Languages(ctx context.Context) (map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/languages"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch languages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var wire struct {
		Languages map[string]string `json:"supported_languages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}
	return wire.Languages, nil
}

func (c *Client) doChat(req *http.Request) (*repositories.ChatReply, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var wire chatReplyWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}

	reply := &repositories.ChatReply{
		SessionID:        wire.SessionID,
		Transcription:    wire.Transcription,
		UserMessage:      wire.UserMessage,
		Response:         wire.Response,
		Language:         wire.DetectedLanguage,
		ResponseLanguage: wire.ResponseLanguage,
		AudioURL:         c.resolveAudioURL(wire.AudioURL),
	}

	c.logger.Debug("Received backend reply",
		zap.String("sessionID", reply.SessionID),
		zap.String("language", reply.ResponseLanguage))

	return reply, nil
}

// resolveAudioURL makes relative clip paths absolute against the
// backend base URL so the player can fetch them directly. The base
// path prefix is kept, so a base of http://host/api serves clips from
// http://host/api/outputs/.
func (c *Client) resolveAudioURL(raw string) string {
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		c.logger.Warn("Backend returned unparseable audio URL", zap.String("audioURL", raw))
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}

	joined := *c.baseURL
	joined.Path = joinPath(c.baseURL.Path, ref.Path)
	joined.RawQuery = ref.RawQuery
	return joined.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = joinPath(c.baseURL.Path, path)
	return u.String()
}

func joinPath(base, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(base, "/") + path
}

func (c *Client) statusError(resp *http.Response) error {
	errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.logger.Error("Backend returned error",
		zap.Int("statusCode", resp.StatusCode),
		zap.String("response", string(errorBody)))
	return fmt.Errorf("backend returned %d", resp.StatusCode)
}
