package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
)

// Upper bound on a provider response body
const maxResponseBytes = 4 << 20

// ResponseEnvelope is one provider's request/response wire shape.
// Adding a provider means adding an envelope, not branching in the client.
type ResponseEnvelope interface {
	// Name identifies the variant in logs and metrics
	Name() string

	// Endpoint returns the chat URL for the configured base URL
	Endpoint(baseURL string) string

	// EncodeRequest builds the provider's request body
	EncodeRequest(model string, messages []Message, params GenerationParams) ([]byte, error)

	// DecodeContent pulls the reply text out of a 2xx response body
	DecodeContent(body []byte) (string, error)
}

// HTTPBackend calls a chat endpoint over plain HTTP using a provider envelope
type HTTPBackend struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	envelope   ResponseEnvelope
	httpClient *http.Client
}

// NewHTTPBackend creates a client for an OpenAI-compatible or Ollama endpoint
func NewHTTPBackend(cfg *config.LLMConfig, envelope ResponseEnvelope) *HTTPBackend {
	return &HTTPBackend{
		baseURL:  strings.TrimRight(cfg.APIBase, "/"),
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		envelope: envelope,
		// the per-call deadline comes from the request context
		httpClient: &http.Client{},
	}
}

// NewBackend picks the provider variant from configuration.
// An empty provider is auto-detected from the base URL.
func NewBackend(cfg *config.LLMConfig, logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Enabled() {
		logger.Warn("LLM_API_BASE is not set, every reply will come from the rule-based fallback")
		return Instrument(DisabledBackend{}, logger)
	}

	provider := cfg.Provider
	if provider == "" {
		switch {
		case IsOpenAIProvider(cfg.APIBase):
			provider = "openai"
		case IsOllamaProvider(cfg.APIBase):
			provider = "ollama"
		default:
			provider = "compatible"
		}
		logger.Info("Detected LLM provider", zap.String("provider", provider), zap.String("api_base", cfg.APIBase))
	}

	var backend Backend
	switch provider {
	case "openai":
		backend = NewSDKBackend(cfg)
	case "ollama":
		backend = NewHTTPBackend(cfg, OllamaEnvelope{})
	default:
		backend = NewHTTPBackend(cfg, ChoicesEnvelope{})
	}

	logger.Info("LLM backend configured",
		zap.String("provider", backend.Name()),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout))

	return Instrument(backend, logger)
}

// Name returns the envelope variant name
func (c *HTTPBackend) Name() string {
	return c.envelope.Name()
}

// Complete performs one chat completion round trip bounded by a single timeout
func (c *HTTPBackend) Complete(ctx context.Context, messages []Message, params GenerationParams) (string, error) {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqBody, err := c.envelope.EncodeRequest(c.model, messages, params)
	if err != nil {
		return "", &BackendError{Kind: KindUnreachable, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.envelope.Endpoint(c.baseURL), bytes.NewReader(reqBody))
	if err != nil {
		return "", &BackendError{Kind: KindUnreachable, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", classifyTransportError(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", classifyTransportError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &BackendError{
			Kind:       KindHTTPError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("API request failed: %s", snippet(body)),
		}
	}

	content, err := c.envelope.DecodeContent(body)
	if err != nil {
		return "", &BackendError{Kind: KindEmptyContent, Err: err}
	}
	if strings.TrimSpace(content) == "" {
		return "", &BackendError{Kind: KindEmptyContent}
	}

	return content, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
