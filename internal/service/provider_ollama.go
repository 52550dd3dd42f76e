package service

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// OllamaEnvelope is Ollama's native /api/chat shape: the reply sits at message.content
type OllamaEnvelope struct{}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message *struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

func (OllamaEnvelope) Name() string { return "ollama" }

func (OllamaEnvelope) Endpoint(baseURL string) string {
	return baseURL + "/api/chat"
}

func (OllamaEnvelope) EncodeRequest(model string, messages []Message, params GenerationParams) ([]byte, error) {
	return json.Marshal(ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: params.Temperature,
			NumPredict:  params.MaxTokens,
		},
	})
}

func (OllamaEnvelope) DecodeContent(body []byte) (string, error) {
	var result ollamaChatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Message == nil || result.Message.Content == nil {
		return "", errors.New("message.content is missing")
	}
	return *result.Message.Content, nil
}

// IsOllamaProvider checks if the base URL is a native Ollama server.
// Ollama's OpenAI-compatible /v1 prefix is left to the choices envelope.
func IsOllamaProvider(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/v1") {
		return false
	}
	return u.Port() == "11434" || strings.Contains(u.Hostname(), "ollama")
}
