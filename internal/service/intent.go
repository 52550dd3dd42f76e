package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/metrics"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/utils"
)

// Sampling bounds for classification calls
const (
	maxClassifyTemperature = 0.3
	maxOutputTokens        = 500
)

// FacilitySource provides the current grounding snapshot
type FacilitySource interface {
	Snapshot() []model.FacilityRef
}

// IntentClassifier turns a user message into an intent plus entities using the backend
type IntentClassifier struct {
	backend    Backend
	facilities FacilitySource
	params     GenerationParams
	logger     *zap.Logger
}

// NewIntentClassifier creates a new intent classifier
func NewIntentClassifier(backend Backend, facilities FacilitySource, cfg *config.LLMConfig, logger *zap.Logger) *IntentClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentClassifier{
		backend:    backend,
		facilities: facilities,
		params: GenerationParams{
			Temperature: math.Min(cfg.IntentTemperature, maxClassifyTemperature),
			MaxTokens:   min(cfg.IntentMaxTokens, maxOutputTokens),
			Timeout:     cfg.Timeout,
		},
		logger: logger,
	}
}

// Classify extracts intent and entities from a message.
// It never fails: any backend or decode error yields the general_info default.
func (p *IntentClassifier) Classify(ctx context.Context, message string) model.IntentResult {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.DefaultIntentResult("empty message")
	}

	result, err := p.classifyWithAI(ctx, message)
	if err != nil {
		kind := ErrorKindOf(err)
		p.logger.Warn("Intent classification degraded to default",
			zap.String("kind", string(kind)),
			zap.Error(err))
		metrics.RecordDegraded("classify_intent", string(kind))
		return model.DefaultIntentResult(err.Error())
	}

	return result
}

// classifyWithAI calls the backend and decodes the reply with strict validation
func (p *IntentClassifier) classifyWithAI(ctx context.Context, message string) (model.IntentResult, error) {
	messages := []Message{
		{Role: RoleSystem, Content: intentSystemPrompt},
		{Role: RoleUser, Content: buildIntentPrompt(message, p.facilities.Snapshot())},
	}

	raw, err := p.backend.Complete(ctx, messages, p.params)
	if err != nil {
		return model.IntentResult{}, err
	}

	obj, err := utils.ExtractStructured(raw)
	if err != nil {
		return model.IntentResult{}, err
	}

	return decodeIntentResult(obj)
}

// decodeIntentResult validates a parsed payload against the IntentResult contract
func decodeIntentResult(obj map[string]any) (model.IntentResult, error) {
	label, err := utils.StringField(obj, "intent")
	if err != nil {
		return model.IntentResult{}, err
	}
	// an omitted intent means nothing specific was asked
	intent := model.IntentGeneralInfo
	if label != nil {
		var ok bool
		if intent, ok = model.ParseIntent(*label); !ok {
			return model.IntentResult{}, fmt.Errorf("%w: unknown intent %q", utils.ErrMalformedPayload, *label)
		}
	}

	entities, err := decodeEntities(obj)
	if err != nil {
		return model.IntentResult{}, err
	}

	confidence := 0.0
	c, err := utils.FloatField(obj, "confidence")
	if err != nil {
		return model.IntentResult{}, err
	}
	if c != nil {
		if math.IsNaN(*c) || *c < 0 || *c > 1 {
			return model.IntentResult{}, fmt.Errorf("%w: confidence %v outside [0,1]", utils.ErrMalformedPayload, *c)
		}
		confidence = *c
	}

	return model.IntentResult{
		Intent:     intent,
		Entities:   entities,
		Confidence: confidence,
	}, nil
}

func decodeEntities(obj map[string]any) (model.EntityRecord, error) {
	var entities model.EntityRecord

	nested, err := utils.ObjectField(obj, "entities")
	if err != nil || nested == nil {
		return entities, err
	}

	if entities.Facility, err = utils.StringField(nested, "facility"); err != nil {
		return entities, err
	}
	if entities.Location, err = utils.StringField(nested, "location"); err != nil {
		return entities, err
	}
	if entities.Component, err = utils.StringField(nested, "component"); err != nil {
		return entities, err
	}

	issueLabel, err := utils.StringField(nested, "issue_type")
	if err != nil {
		return entities, err
	}
	if issueLabel != nil {
		issueType, ok := model.ParseIssueType(*issueLabel)
		if !ok {
			return entities, fmt.Errorf("%w: unknown issue_type %q", utils.ErrMalformedPayload, *issueLabel)
		}
		entities.IssueType = &issueType
	}

	return entities, nil
}
