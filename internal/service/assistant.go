package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// Assistant is the orchestration engine handed to request handlers.
// Every operation returns a usable result; failures are absorbed here.
type Assistant struct {
	cache    *ContextCache
	intents  *IntentClassifier
	replies  *Responder
	issues   *IssueClassifier
	fallback *FallbackResponder
}

// NewAssistant wires the engine around one backend and one facility store
func NewAssistant(cfg *config.Config, backend Backend, store FacilityStore, logger *zap.Logger) *Assistant {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache := NewContextCache(store, logger.Named("context"))
	fallback := NewFallbackResponder(cache)

	return &Assistant{
		cache:    cache,
		intents:  NewIntentClassifier(backend, cache, &cfg.LLM, logger.Named("intent")),
		replies:  NewResponder(backend, cache, fallback, cfg, logger.Named("responder")),
		issues:   NewIssueClassifier(backend, &cfg.LLM, logger.Named("issue")),
		fallback: fallback,
	}
}

// ClassifyIntent extracts intent and entities from a user message
func (a *Assistant) ClassifyIntent(ctx context.Context, message string) model.IntentResult {
	return a.intents.Classify(ctx, message)
}

// GenerateResponse produces the reply for a classified message
func (a *Assistant) GenerateResponse(ctx context.Context, message string, intent model.IntentResult, history []model.ConversationTurn) string {
	return a.replies.Generate(ctx, message, intent, history)
}

// ClassifyIssue assigns a type and priority to an issue description
func (a *Assistant) ClassifyIssue(ctx context.Context, description string) model.ClassificationResult {
	return a.issues.Classify(ctx, description)
}

// RefreshContext reloads the facility snapshot
func (a *Assistant) RefreshContext(ctx context.Context) {
	a.cache.Load(ctx)
}

// Facilities returns the current facility snapshot
func (a *Assistant) Facilities() []model.FacilityRef {
	return a.cache.Snapshot()
}

// ContextLoadedAt returns when the snapshot was last loaded, zero if never
func (a *Assistant) ContextLoadedAt() time.Time {
	return a.cache.LoadedAt()
}

// FallbackRespond answers from the rule engine without calling the backend
func (a *Assistant) FallbackRespond(message string, intent model.IntentResult) string {
	return a.fallback.Respond(message, intent)
}
