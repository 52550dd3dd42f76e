package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// Context line limits per prompt
const (
	intentFacilityLimit   = 20
	responseFacilityLimit = 15
)

const intentSystemPrompt = "You are an expert in natural language processing for campus facility management."

const issueSystemPrompt = "You are an expert in facility management and issue classification."

// intentGuidance is one behavioural instruction per intent value
var intentGuidance = map[model.Intent]string{
	model.IntentSearch:      "Help the user find the facility they are looking for and give its location.",
	model.IntentExplore:     "Describe relevant facilities and what they offer.",
	model.IntentBook:        "Provide booking information or guide the user through the booking process; only bookable facilities can be reserved.",
	model.IntentReportIssue: "Acknowledge the problem, explain how to report it through the Report Issue page, and ask for any missing details such as location or component.",
	model.IntentCheckStatus: "Explain how to check the status of a reported issue from the dashboard.",
	model.IntentGeneralInfo: "Provide general help and list what the assistant can do.",
}

// facilityLines renders at most limit facilities in cache order
func facilityLines(facilities []model.FacilityRef, limit int, markBookable bool) string {
	if len(facilities) > limit {
		facilities = facilities[:limit]
	}
	if len(facilities) == 0 {
		return "(no facility information is currently available)"
	}

	var sb strings.Builder
	for i, f := range facilities {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "- %s (%s) at %s", f.Name, f.Category, f.Location)
		if markBookable && f.Bookable {
			sb.WriteString(" - Bookable")
		}
	}
	return sb.String()
}

func joinLabels[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// buildIntentPrompt returns the user prompt for intent and entity extraction
func buildIntentPrompt(message string, facilities []model.FacilityRef) string {
	return fmt.Sprintf(`Analyze the following user message and extract entities and classify intent.

Available facilities:
%s

User message: "%s"

Extract and classify the following:
1. Intent: exactly one of [%s]
2. Entities:
   - facility: name of the facility mentioned, or null
   - location: specific location mentioned, or null
   - issue_type: when reporting an issue, one of [%s], otherwise null
   - component: specific component or equipment mentioned, or null

Respond ONLY with a JSON object in this format:
{
  "intent": "intent_name",
  "entities": {
    "facility": "facility name or null",
    "location": "location or null",
    "issue_type": "issue type or null",
    "component": "component or null"
  },
  "confidence": 0.0
}
confidence is a number between 0.0 and 1.0.`,
		facilityLines(facilities, intentFacilityLimit, false),
		message,
		joinLabels(model.Intents),
		joinLabels(model.IssueTypes),
	)
}

// buildResponseSystemPrompt returns the grounding message for reply generation
func buildResponseSystemPrompt(assistantName string, facilities []model.FacilityRef, intent model.IntentResult) string {
	entities, err := json.Marshal(intent.Entities)
	if err != nil {
		entities = []byte("{}")
	}

	var guidance strings.Builder
	for _, i := range model.Intents {
		fmt.Fprintf(&guidance, "- %s: %s\n", i, intentGuidance[i])
	}

	return fmt.Sprintf(`You are the %s, helping students and staff with campus facility questions.

Available facilities:
%s

Detected intent: %s
Extracted entities: %s

For different intents:
%s
Provide a helpful, friendly response. Keep responses concise but informative.
Only mention facilities from the list above; if the information is not available, say so and suggest contacting facility management.
Be conversational. If you need more information, ask a clarifying question.`,
		assistantName,
		facilityLines(facilities, responseFacilityLimit, true),
		intent.Intent,
		entities,
		guidance.String(),
	)
}

// buildIssuePrompt returns the user prompt for issue classification
func buildIssuePrompt(description string) string {
	return fmt.Sprintf(`Analyze this facility issue description and classify it.

Description: "%s"

Issue types (choose exactly one of [%s]):
- electrical: power outages, faulty wiring, lighting or socket problems
  e.g. "lights in lecture hall 3 keep flickering"
- hygiene: cleanliness, sanitation, pests, waste management
  e.g. "toilets on level 2 have not been cleaned for days"
- structural: building damage, leaks, cracks, broken doors or windows
  e.g. "water leaking from the ceiling in the library"
- equipment: broken machines, computers, projectors, air conditioning, furniture
  e.g. "projector in computer lab 1 shows no signal"
- security: access cards, locks, CCTV, safety concerns
  e.g. "the back door of the hostel cannot be locked"
- other: anything that fits none of the above
  e.g. "the notice board has outdated information"

Priority levels (choose exactly one of [%s]):
- urgent: safety hazards or complete system failures
- high: major disruption affecting many users
- medium: moderate issue with some impact
- low: minor issue with minimal impact

Respond ONLY with a JSON object:
{
  "issue_type": "type",
  "priority": "priority",
  "reasoning": "brief explanation"
}`,
		description,
		joinLabels(model.IssueTypes),
		joinLabels(model.Priorities),
	)
}
