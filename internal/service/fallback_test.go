package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

func TestFallbackResponder_RuleSelection(t *testing.T) {
	responder := NewFallbackResponder(staticFacilities(nil))

	tests := []struct {
		message string
		want    string
	}{
		{message: "the projector in computer lab is broken", want: "computer_lab"},
		{message: "Are there PCs I can use?", want: "computer_lab"},
		{message: "I need a quiet place for studying", want: "library"},
		{message: "Does the LIBRARY have books on AI?", want: "library"},
		{message: "where is the gym", want: "fitness"},
		{message: "any sports facilities?", want: "fitness"},
		{message: "how do I apply for a hostel", want: "accommodation"},
		{message: "where can I eat lunch", want: "dining"},
		{message: "where is the admin office", want: "location"},
		{message: "can you help me find directions to the hall", want: "location"},
		{message: "there is a leak in the toilet", want: "issue_report"},
		{message: "I want to report a problem", want: "issue_report"},
		{message: "I want to book the seminar hall", want: "booking"},
		{message: "Can I make a reservation for tomorrow?", want: "booking"},
		{message: "is the room available", want: "generic"},
		{message: "is there open space outside", want: "generic"},
		{message: "hello", want: "generic"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			_, rule := responder.match(tt.message)
			assert.Equal(t, tt.want, rule)
		})
	}
}

func TestFallbackResponder_ProjectorInComputerLab(t *testing.T) {
	responder := NewFallbackResponder(staticFacilities{})

	reply := responder.Respond("the projector in computer lab is broken", model.DefaultIntentResult(""))

	assert.Contains(t, reply, "Computer Lab 1")
	assert.NotContains(t, reply, "can help you with")
}

func TestFallbackResponder_LocationListsLiveEntries(t *testing.T) {
	responder := NewFallbackResponder(staticFacilities(sampleFacilities(8)))

	reply := responder.Respond("where can I find the admin office?", model.IntentResult{})

	for i := 1; i <= 6; i++ {
		assert.Contains(t, reply, sampleFacilities(8)[i-1].Name)
	}
	assert.NotContains(t, reply, "Facility 07")
	assert.NotContains(t, reply, "Facility 08")
}

func TestFallbackResponder_LocationWithEmptyCache(t *testing.T) {
	responder := NewFallbackResponder(staticFacilities{})

	reply := responder.Respond("where is the admin office", model.IntentResult{})

	assert.NotEmpty(t, reply)
	assert.Contains(t, reply, "What specific facility are you looking for?")
}

func TestFallbackResponder_IsTotal(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"!!!???",
		strings.Repeat("very long message without keywords ", 2000),
		"Di mana perpustakaan?",
		"图书馆在哪里",
		"¿Dónde está la cafetería? 🍕",
		"\x00\xff\xfe",
	}

	for _, responder := range []*FallbackResponder{
		NewFallbackResponder(nil),
		NewFallbackResponder(staticFacilities{}),
		NewFallbackResponder(staticFacilities(sampleFacilities(3))),
	} {
		for _, input := range inputs {
			assert.NotEmpty(t, strings.TrimSpace(responder.Respond(input, model.IntentResult{})))
		}
	}
}

func TestFallbackResponder_Deterministic(t *testing.T) {
	responder := NewFallbackResponder(staticFacilities(sampleFacilities(4)))
	message := "where is the cafeteria and the library"

	first := responder.Respond(message, model.IntentResult{})
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, responder.Respond(message, model.IntentResult{}))
	}
}
