package service

import (
	"encoding/json"
	"errors"
	"strings"
)

// ChoicesEnvelope is the OpenAI-compatible shape: the reply sits at
// choices[0].message.content. DeepSeek, NVIDIA NIM, vLLM and Ollama's /v1 speak it.
type ChoicesEnvelope struct{}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (ChoicesEnvelope) Name() string { return "compatible" }

func (ChoicesEnvelope) Endpoint(baseURL string) string {
	return baseURL + "/chat/completions"
}

func (ChoicesEnvelope) EncodeRequest(model string, messages []Message, params GenerationParams) ([]byte, error) {
	return json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Stream:      false,
	})
}

func (ChoicesEnvelope) DecodeContent(body []byte) (string, error) {
	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	if result.Choices[0].Message.Content == nil {
		return "", errors.New("choices[0].message.content is missing")
	}
	return *result.Choices[0].Message.Content, nil
}

// IsOpenAIProvider checks if the base URL is official OpenAI API
func IsOpenAIProvider(baseURL string) bool {
	return strings.Contains(baseURL, "api.openai.com")
}
