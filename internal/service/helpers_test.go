package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sengtan/utm-campus-chatbot/internal/config"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

type fakeCall struct {
	messages []Message
	params   GenerationParams
}

// fakeBackend records calls and answers with a fixed reply or error
type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	err     error
	respond func(messages []Message) (string, error)
	calls   []fakeCall
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(_ context.Context, messages []Message, params GenerationParams) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{messages: messages, params: params})
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(messages)
	}
	return f.reply, f.err
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) lastCall() fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

// fakeStore serves a fixed facility list or error
type fakeStore struct {
	mu         sync.Mutex
	facilities []model.FacilityRef
	err        error
	calls      int
}

func (s *fakeStore) ListFacilities(context.Context) ([]model.FacilityRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.facilities, nil
}

func (s *fakeStore) set(facilities []model.FacilityRef, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities = facilities
	s.err = err
}

// staticFacilities is a FacilitySource over a fixed slice
type staticFacilities []model.FacilityRef

func (s staticFacilities) Snapshot() []model.FacilityRef { return s }

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Model:               "test-model",
			Timeout:             2 * time.Second,
			IntentTemperature:   0.2,
			IntentMaxTokens:     500,
			ResponseTemperature: 0.7,
			ResponseMaxTokens:   500,
			IssueTemperature:    0.1,
			IssueMaxTokens:      300,
			HistoryLimit:        10,
		},
		Assistant: config.AssistantConfig{Name: "UTM Campus Assistant"},
	}
}

func sampleFacilities(n int) []model.FacilityRef {
	facilities := make([]model.FacilityRef, n)
	for i := range facilities {
		facilities[i] = model.FacilityRef{
			Name:     fmt.Sprintf("Facility %02d", i+1),
			Category: "lab",
			Location: fmt.Sprintf("Block %c", 'A'+i%26),
			Bookable: i%2 == 0,
		}
	}
	return facilities
}

func timeoutErr() error {
	return &BackendError{Kind: KindTimeout, Err: context.DeadlineExceeded}
}
