package model

import "time"

// Sender identifies who produced a conversation turn
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ConversationTurn is one entry of caller-supplied chat history
type ConversationTurn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// ChatRequest represents a chat message request
type ChatRequest struct {
	Message string             `json:"message"`
	History []ConversationTurn `json:"history,omitempty"`
}

// ChatResponse represents the assistant reply plus what was understood
type ChatResponse struct {
	Response   string       `json:"response"`
	Intent     Intent       `json:"intent"`
	Entities   EntityRecord `json:"entities"`
	Confidence float64      `json:"confidence"`
	Took       int64        `json:"took_ms"` // Response time in milliseconds
}

// IssueClassifyRequest represents a request to classify an issue description
type IssueClassifyRequest struct {
	Description string `json:"description" binding:"required"`
}

// FacilityListResponse represents the current facility snapshot
type FacilityListResponse struct {
	Facilities []FacilityRef `json:"facilities"`
	Total      int           `json:"total"`
	LoadedAt   *time.Time    `json:"loaded_at,omitempty"`
}

// RefreshResponse represents the result of a context refresh
type RefreshResponse struct {
	Facilities int        `json:"facilities"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
}
