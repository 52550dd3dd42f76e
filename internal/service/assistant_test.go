package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

func TestAssistant_RefreshContext(t *testing.T) {
	store := &fakeStore{facilities: sampleFacilities(4)}
	assistant := NewAssistant(testConfig(), &fakeBackend{}, store, nil)

	assert.Empty(t, assistant.Facilities())
	assert.True(t, assistant.ContextLoadedAt().IsZero())

	assistant.RefreshContext(context.Background())

	assert.Len(t, assistant.Facilities(), 4)
	assert.False(t, assistant.ContextLoadedAt().IsZero())
}

func TestAssistant_TimeoutEverywhere(t *testing.T) {
	backend := &fakeBackend{err: timeoutErr()}
	assistant := NewAssistant(testConfig(), backend, &fakeStore{}, nil)
	ctx := context.Background()

	intent := assistant.ClassifyIntent(ctx, "where is the library")
	assert.Equal(t, model.IntentGeneralInfo, intent.Intent)
	assert.True(t, intent.Entities.IsEmpty())
	assert.Equal(t, 0.0, intent.Confidence)

	reply := assistant.GenerateResponse(ctx, "where is the library", intent, nil)
	assert.NotEmpty(t, reply)

	// one attempt per operation, no retries
	assert.Equal(t, 2, backend.callCount())

	issue := assistant.ClassifyIssue(ctx, "broken chair in lecture hall")
	assert.Equal(t, model.IssueOther, issue.IssueType)
	assert.Equal(t, model.PriorityMedium, issue.Priority)
	assert.Contains(t, issue.Reasoning, "timed out")
	assert.Equal(t, 3, backend.callCount())
}

func TestAssistant_DisabledBackend(t *testing.T) {
	store := &fakeStore{facilities: sampleFacilities(3)}
	assistant := NewAssistant(testConfig(), DisabledBackend{}, store, nil)
	assistant.RefreshContext(context.Background())

	intent := assistant.ClassifyIntent(context.Background(), "where can I find the admin office")
	reply := assistant.GenerateResponse(context.Background(), "where can I find the admin office", intent, nil)

	assert.Contains(t, reply, "Facility 01")
	assert.Equal(t, reply, assistant.FallbackRespond("where can I find the admin office", intent))
}

func TestAssistant_StoreFailureDoesNotBreakReplies(t *testing.T) {
	store := &fakeStore{err: errors.New("database is down")}
	backend := &fakeBackend{reply: "The library is at Block B."}
	assistant := NewAssistant(testConfig(), backend, store, nil)

	assistant.RefreshContext(context.Background())

	reply := assistant.GenerateResponse(context.Background(), "where is the library", model.IntentResult{Intent: model.IntentSearch}, nil)
	assert.Equal(t, "The library is at Block B.", reply)
	assert.Contains(t, backend.lastCall().messages[0].Content, "no facility information")
}

func TestAssistant_ConcurrentOperations(t *testing.T) {
	backend := &fakeBackend{respond: func(messages []Message) (string, error) {
		if messages[0].Content == intentSystemPrompt {
			return `{"intent":"search","entities":{"facility":"Library"},"confidence":0.7}`, nil
		}
		if messages[0].Content == issueSystemPrompt {
			return `{"issue_type":"hygiene","priority":"low","reasoning":"litter"}`, nil
		}
		return "Here you go.", nil
	}}
	store := &fakeStore{facilities: sampleFacilities(10)}
	assistant := NewAssistant(testConfig(), backend, store, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			assistant.RefreshContext(ctx)
			intent := assistant.ClassifyIntent(ctx, "where is the library")
			assert.Equal(t, model.IntentSearch, intent.Intent)
			assert.Equal(t, "Here you go.", assistant.GenerateResponse(ctx, "where is the library", intent, nil))
			assert.Equal(t, model.IssueHygiene, assistant.ClassifyIssue(ctx, "litter everywhere").IssueType)
		}()
	}
	wg.Wait()

	require.Len(t, assistant.Facilities(), 10)
}
