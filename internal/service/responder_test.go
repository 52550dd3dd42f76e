package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

func newTestResponder(backend Backend, facilities []model.FacilityRef) *Responder {
	source := staticFacilities(facilities)
	return NewResponder(backend, source, NewFallbackResponder(source), testConfig(), nil)
}

func strPtr(s string) *string { return &s }

func TestResponder_Success(t *testing.T) {
	backend := &fakeBackend{reply: "<think>\nThe user wants to book.\nCheck the list.\n</think>\n\nFacility 01 is bookable at Block A."}
	responder := newTestResponder(backend, sampleFacilities(20))
	intent := model.IntentResult{
		Intent:     model.IntentBook,
		Entities:   model.EntityRecord{Facility: strPtr("Facility 01")},
		Confidence: 0.9,
	}

	reply := responder.Generate(context.Background(), "Can I book Facility 01?", intent, nil)

	assert.Equal(t, "Facility 01 is bookable at Block A.", reply)

	call := backend.lastCall()
	require.Len(t, call.messages, 2)
	system := call.messages[0]
	assert.Equal(t, RoleSystem, system.Role)
	assert.Contains(t, system.Content, "UTM Campus Assistant")
	assert.Contains(t, system.Content, "Detected intent: book")
	assert.Contains(t, system.Content, `"facility":"Facility 01"`)
	assert.Contains(t, system.Content, "- Facility 01 (lab) at Block A - Bookable")
	assert.Contains(t, system.Content, "- Facility 02 (lab) at Block B\n")
	assert.Contains(t, system.Content, "Facility 15")
	assert.NotContains(t, system.Content, "Facility 16")
	for _, i := range model.Intents {
		assert.Contains(t, system.Content, "- "+string(i)+":")
	}

	assert.Equal(t, Message{Role: RoleUser, Content: "Can I book Facility 01?"}, call.messages[1])
	assert.Equal(t, 0.7, call.params.Temperature)
	assert.Equal(t, 500, call.params.MaxTokens)
}

func TestResponder_HistoryOrderAndRoles(t *testing.T) {
	backend := &fakeBackend{reply: "Sure."}
	responder := newTestResponder(backend, nil)
	history := []model.ConversationTurn{
		{Sender: model.SenderUser, Text: "Hi"},
		{Sender: model.SenderAssistant, Text: "Hello! How can I help?"},
		{Sender: "moderator", Text: "ignored"},
		{Sender: model.SenderUser, Text: "   "},
		{Sender: model.SenderUser, Text: "Where is the gym?"},
	}

	responder.Generate(context.Background(), "And the library?", model.IntentResult{Intent: model.IntentSearch}, history)

	messages := backend.lastCall().messages
	require.Len(t, messages, 5)
	assert.Equal(t, RoleSystem, messages[0].Role)
	assert.Equal(t, Message{Role: RoleUser, Content: "Hi"}, messages[1])
	assert.Equal(t, Message{Role: RoleAssistant, Content: "Hello! How can I help?"}, messages[2])
	assert.Equal(t, Message{Role: RoleUser, Content: "Where is the gym?"}, messages[3])
	assert.Equal(t, Message{Role: RoleUser, Content: "And the library?"}, messages[4])
}

func TestResponder_HistoryLimit(t *testing.T) {
	backend := &fakeBackend{reply: "ok"}
	responder := newTestResponder(backend, nil)

	history := make([]model.ConversationTurn, 14)
	for i := range history {
		history[i] = model.ConversationTurn{Sender: model.SenderUser, Text: fmt.Sprintf("turn %d", i)}
	}

	responder.Generate(context.Background(), "latest", model.IntentResult{}, history)

	messages := backend.lastCall().messages
	require.Len(t, messages, 12)
	assert.Equal(t, "turn 4", messages[1].Content)
	assert.Equal(t, "turn 13", messages[10].Content)
	assert.Equal(t, "latest", messages[11].Content)
}

func TestResponder_TimeoutUsesFallback(t *testing.T) {
	backend := &fakeBackend{err: timeoutErr()}
	responder := newTestResponder(backend, nil)

	reply := responder.Generate(context.Background(), "the projector in computer lab is broken", model.DefaultIntentResult("timeout"), nil)

	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "Computer Lab 1")
	assert.Equal(t, 1, backend.callCount())
}

func TestResponder_FailuresNeverSurface(t *testing.T) {
	failures := []error{
		timeoutErr(),
		&BackendError{Kind: KindUnreachable},
		&BackendError{Kind: KindHTTPError, StatusCode: 500},
		&BackendError{Kind: KindEmptyContent},
	}

	for _, failure := range failures {
		t.Run(failure.Error(), func(t *testing.T) {
			reply := newTestResponder(&fakeBackend{err: failure}, nil).
				Generate(context.Background(), "hello", model.IntentResult{}, nil)

			assert.NotEmpty(t, reply)
			assert.NotContains(t, reply, "backend")
			assert.NotContains(t, reply, "HTTP")
		})
	}
}

func TestResponder_ReasoningNeverReachesUser(t *testing.T) {
	replies := []string{
		"<reasoning>SECRET-PLAN</reasoning>The gym opens at 7am.",
		"The gym opens at 7am.<think>SECRET-PLAN\nacross lines</think>",
		"Intro. <think>SECRET-PLAN</think> The gym opens at 7am. <reasoning>SECRET-PLAN again</reasoning>",
		"The gym opens at 7am. <think>SECRET-PLAN never closed",
		"<think>SECRET-PLAN only</think>",
	}

	for _, raw := range replies {
		reply := newTestResponder(&fakeBackend{reply: raw}, nil).
			Generate(context.Background(), "when does the gym open", model.IntentResult{}, nil)

		assert.NotContains(t, reply, "SECRET-PLAN")
		assert.NotEmpty(t, reply)
	}
}

func TestResponder_ReasoningOnlyFallsBack(t *testing.T) {
	backend := &fakeBackend{reply: "<think>nothing else</think>"}
	reply := newTestResponder(backend, nil).
		Generate(context.Background(), "where is the gym", model.IntentResult{}, nil)

	assert.Contains(t, reply, "Gymnasium")
	assert.Equal(t, 1, backend.callCount())
}
