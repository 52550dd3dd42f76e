package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/metrics"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
	"github.com/sengtan/utm-campus-chatbot/internal/utils"
)

// IssueClassifier assigns a type and priority to a free-text issue report
type IssueClassifier struct {
	backend Backend
	params  GenerationParams
	logger  *zap.Logger
}

// NewIssueClassifier creates a new issue classifier
func NewIssueClassifier(backend Backend, cfg *config.LLMConfig, logger *zap.Logger) *IssueClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueClassifier{
		backend: backend,
		params: GenerationParams{
			Temperature: math.Min(cfg.IssueTemperature, maxClassifyTemperature),
			MaxTokens:   min(cfg.IssueMaxTokens, maxOutputTokens),
			Timeout:     cfg.Timeout,
		},
		logger: logger,
	}
}

// Classify returns the classification for description.
// On any failure it returns other/medium with reasoning naming the failure class.
func (c *IssueClassifier) Classify(ctx context.Context, description string) model.ClassificationResult {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.DefaultClassification("Auto-classified: the issue description was empty")
	}

	result, err := c.classifyWithAI(ctx, description)
	if err != nil {
		kind := ErrorKindOf(err)
		c.logger.Warn("Issue classification degraded to default",
			zap.String("kind", string(kind)),
			zap.Error(err))
		metrics.RecordDegraded("classify_issue", string(kind))
		return model.DefaultClassification(failureReasoning(err))
	}

	return result
}

func (c *IssueClassifier) classifyWithAI(ctx context.Context, description string) (model.ClassificationResult, error) {
	messages := []Message{
		{Role: RoleSystem, Content: issueSystemPrompt},
		{Role: RoleUser, Content: buildIssuePrompt(description)},
	}

	raw, err := c.backend.Complete(ctx, messages, c.params)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	obj, err := utils.ExtractStructured(raw)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	return decodeClassification(obj)
}

// decodeClassification validates both labels; an unknown label is a malformed payload
func decodeClassification(obj map[string]any) (model.ClassificationResult, error) {
	typeLabel, err := utils.StringField(obj, "issue_type")
	if err != nil {
		return model.ClassificationResult{}, err
	}
	if typeLabel == nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: issue_type is missing", utils.ErrMalformedPayload)
	}
	issueType, ok := model.ParseIssueType(*typeLabel)
	if !ok {
		return model.ClassificationResult{}, fmt.Errorf("%w: unknown issue_type %q", utils.ErrMalformedPayload, *typeLabel)
	}

	priorityLabel, err := utils.StringField(obj, "priority")
	if err != nil {
		return model.ClassificationResult{}, err
	}
	if priorityLabel == nil {
		return model.ClassificationResult{}, fmt.Errorf("%w: priority is missing", utils.ErrMalformedPayload)
	}
	priority, ok := model.ParsePriority(*priorityLabel)
	if !ok {
		return model.ClassificationResult{}, fmt.Errorf("%w: unknown priority %q", utils.ErrMalformedPayload, *priorityLabel)
	}

	reasoning := ""
	if r, err := utils.StringField(obj, "reasoning"); err == nil && r != nil {
		reasoning = *r
	}

	return model.ClassificationResult{
		IssueType: issueType,
		Priority:  priority,
		Reasoning: reasoning,
	}, nil
}

// failureReasoning names the failure class for operators reading the stored issue
func failureReasoning(err error) string {
	switch ErrorKindOf(err) {
	case KindTimeout:
		return "Auto-classified: the classification service timed out"
	case KindHTTPError:
		status := 0
		var be *BackendError
		if errors.As(err, &be) {
			status = be.StatusCode
		}
		return fmt.Sprintf("Auto-classified: the classification service returned HTTP %d", status)
	case KindEmptyContent:
		return "Auto-classified: the classification service returned empty content"
	case KindMalformedPayload:
		return "Auto-classified: the classification response was malformed"
	default:
		return "Auto-classified: the classification service was unreachable"
	}
}
