package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/metrics"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/utils"
)

// Responder generates the conversational reply for a classified message
type Responder struct {
	backend       Backend
	facilities    FacilitySource
	fallback      *FallbackResponder
	assistantName string
	historyLimit  int
	params        GenerationParams
	logger        *zap.Logger
}

// NewResponder creates a new reply generator
func NewResponder(backend Backend, facilities FacilitySource, fallback *FallbackResponder, cfg *config.Config, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		backend:       backend,
		facilities:    facilities,
		fallback:      fallback,
		assistantName: cfg.Assistant.Name,
		historyLimit:  cfg.LLM.HistoryLimit,
		params: GenerationParams{
			Temperature: cfg.LLM.ResponseTemperature,
			MaxTokens:   min(cfg.LLM.ResponseMaxTokens, maxOutputTokens),
			Timeout:     cfg.LLM.Timeout,
		},
		logger: logger,
	}
}

// Generate returns reply text for the message. It has no error channel:
// when the backend fails the deterministic fallback answers instead.
func (r *Responder) Generate(ctx context.Context, message string, intent model.IntentResult, history []model.ConversationTurn) string {
	raw, err := r.backend.Complete(ctx, r.buildMessages(message, intent, history), r.params)
	if err == nil {
		if reply := utils.StripReasoning(raw); reply != "" {
			return reply
		}
		err = &BackendError{Kind: KindEmptyContent}
	}

	kind := ErrorKindOf(err)
	reply, rule := r.fallback.match(message)
	r.logger.Warn("Reply generation fell back to rules",
		zap.String("kind", string(kind)),
		zap.String("rule", rule),
		zap.Error(err))
	metrics.RecordFallback(string(kind))

	return reply
}

// buildMessages assembles system grounding, recent history, then the current turn
func (r *Responder) buildMessages(message string, intent model.IntentResult, history []model.ConversationTurn) []Message {
	turns := recentTurns(history, r.historyLimit)

	messages := make([]Message, 0, len(turns)+2)
	messages = append(messages, Message{
		Role:    RoleSystem,
		Content: buildResponseSystemPrompt(r.assistantName, r.facilities.Snapshot(), intent),
	})

	for _, turn := range turns {
		messages = append(messages, Message{Role: roleFor(turn.Sender), Content: turn.Text})
	}

	return append(messages, Message{Role: RoleUser, Content: message})
}

// recentTurns keeps the last limit usable turns in order.
// Turns with an unknown sender or blank text are dropped.
func recentTurns(history []model.ConversationTurn, limit int) []model.ConversationTurn {
	usable := make([]model.ConversationTurn, 0, len(history))
	for _, turn := range history {
		if roleFor(turn.Sender) == "" || strings.TrimSpace(turn.Text) == "" {
			continue
		}
		usable = append(usable, turn)
	}
	if len(usable) > limit {
		usable = usable[len(usable)-limit:]
	}
	return usable
}

func roleFor(sender model.Sender) string {
	switch sender {
	case model.SenderUser:
		return RoleUser
	case model.SenderAssistant:
		return RoleAssistant
	default:
		return ""
	}
}
