package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
)

// SDKBackend talks to the official OpenAI API through go-openai
type SDKBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewSDKBackend creates the openai provider variant
func NewSDKBackend(cfg *config.LLMConfig) *SDKBackend {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	}

	return &SDKBackend{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}
}

func (c *SDKBackend) Name() string { return "openai" }

// Complete performs one chat completion through the SDK
func (c *SDKBackend) Complete(ctx context.Context, messages []Message, params GenerationParams) (string, error) {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(params.Temperature),
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", mapSDKError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Kind: KindEmptyContent, Err: errors.New("response has no choices")}
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", &BackendError{Kind: KindEmptyContent}
	}

	return content, nil
}

// mapSDKError converts go-openai error types to backend error kinds
func mapSDKError(err error) *BackendError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &BackendError{Kind: KindHTTPError, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &BackendError{Kind: KindHTTPError, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}

	return classifyTransportError(err)
}
