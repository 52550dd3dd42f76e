package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/sengtan/utm-campus-chatbot/internal/metrics"
	"github.com/sengtan/utm-campus-chatbot/internal/utils"
)

// Message roles understood by every provider
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message sent to the backend
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams are the per-call sampling settings
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration // zero means the backend default
}

// Backend is the single call contract every LLM provider is adapted to.
// Complete makes exactly one network round trip and returns the reply text
// or a *BackendError. It holds no state shared with other calls.
type Backend interface {
	Complete(ctx context.Context, messages []Message, params GenerationParams) (string, error)

	// Name identifies the provider variant in logs and metrics
	Name() string
}

// ErrorKind classifies why a backend call or its decoding failed
type ErrorKind string

const (
	KindTimeout          ErrorKind = "timeout"
	KindUnreachable      ErrorKind = "unreachable"
	KindHTTPError        ErrorKind = "http_error"
	KindEmptyContent     ErrorKind = "empty_content"
	KindMalformedPayload ErrorKind = "malformed_payload"
)

// BackendError is the typed failure returned by Backend.Complete
type BackendError struct {
	Kind       ErrorKind
	StatusCode int // set for KindHTTPError
	Err        error
}

func (e *BackendError) Error() string {
	var msg string
	switch e.Kind {
	case KindTimeout:
		msg = "backend call timed out"
	case KindUnreachable:
		msg = "backend unreachable"
	case KindHTTPError:
		msg = fmt.Sprintf("backend returned HTTP %d", e.StatusCode)
	case KindEmptyContent:
		msg = "backend returned empty content"
	default:
		msg = "backend error: " + string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// ErrorKindOf maps any error from the backend or extractor tiers to a kind
func ErrorKindOf(err error) ErrorKind {
	var be *BackendError
	switch {
	case errors.As(err, &be):
		return be.Kind
	case errors.Is(err, utils.ErrMalformedPayload):
		return KindMalformedPayload
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	default:
		return KindUnreachable
	}
}

// classifyTransportError maps a failed round trip to a BackendError.
// Deadlines map to timeout; dial failures and caller cancellation to unreachable.
func classifyTransportError(err error) *BackendError {
	var be *BackendError
	if errors.As(err, &be) {
		return be
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &BackendError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &BackendError{Kind: KindTimeout, Err: err}
	}
	return &BackendError{Kind: KindUnreachable, Err: err}
}

// DisabledBackend is used when no LLM endpoint is configured.
// Every call fails as unreachable so callers take their fallback path.
type DisabledBackend struct{}

func (DisabledBackend) Name() string { return "disabled" }

func (DisabledBackend) Complete(context.Context, []Message, GenerationParams) (string, error) {
	return "", &BackendError{Kind: KindUnreachable, Err: errors.New("no LLM endpoint configured")}
}

// instrumentedBackend records call counts, latency and failures for the wrapped backend
type instrumentedBackend struct {
	next   Backend
	logger *zap.Logger
}

func (b *instrumentedBackend) Name() string { return b.next.Name() }

func (b *instrumentedBackend) Complete(ctx context.Context, messages []Message, params GenerationParams) (string, error) {
	start := time.Now()
	content, err := b.next.Complete(ctx, messages, params)
	took := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = string(ErrorKindOf(err))
		b.logger.Warn("LLM backend call failed",
			zap.String("provider", b.next.Name()),
			zap.String("kind", outcome),
			zap.Duration("took", took),
			zap.Error(err))
	} else {
		b.logger.Debug("LLM backend call succeeded",
			zap.String("provider", b.next.Name()),
			zap.Int("messages", len(messages)),
			zap.Int("chars", len(content)),
			zap.Duration("took", took))
	}
	metrics.ObserveBackendCall(b.next.Name(), outcome, took)

	return content, err
}

// Instrument wraps a backend with logging and metrics
func Instrument(backend Backend, logger *zap.Logger) Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &instrumentedBackend{next: backend, logger: logger}
}
