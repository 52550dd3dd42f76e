package model

import "strings"

// Intent is the coarse purpose of a user message
type Intent string

const (
	IntentSearch      Intent = "search"
	IntentExplore     Intent = "explore"
	IntentBook        Intent = "book"
	IntentReportIssue Intent = "report_issue"
	IntentCheckStatus Intent = "check_status"
	IntentGeneralInfo Intent = "general_info"
)

// Intents lists every intent in prompt order
var Intents = []Intent{
	IntentSearch,
	IntentExplore,
	IntentBook,
	IntentReportIssue,
	IntentCheckStatus,
	IntentGeneralInfo,
}

// ParseIntent matches a free-form label against the known intents.
// Case, surrounding whitespace, spaces and hyphens are normalised first,
// so "Report Issue" and "report-issue" both resolve to report_issue.
func ParseIntent(s string) (Intent, bool) {
	key := normalizeLabel(s)
	for _, intent := range Intents {
		if string(intent) == key {
			return intent, true
		}
	}
	return "", false
}

// EntityRecord holds the facts extracted from a message.
// A nil field means "not mentioned".
type EntityRecord struct {
	Facility  *string    `json:"facility,omitempty"`
	Location  *string    `json:"location,omitempty"`
	IssueType *IssueType `json:"issue_type,omitempty"`
	Component *string    `json:"component,omitempty"`
}

// IsEmpty reports whether no entity was extracted
func (e EntityRecord) IsEmpty() bool {
	return e.Facility == nil && e.Location == nil && e.IssueType == nil && e.Component == nil
}

// IntentResult represents the classified intent of a single user message
type IntentResult struct {
	Intent     Intent       `json:"intent"`
	Entities   EntityRecord `json:"entities"`
	Confidence float64      `json:"confidence"`
	Error      string       `json:"error,omitempty"` // diagnostic only
}

// DefaultIntentResult is returned whenever classification cannot complete
func DefaultIntentResult(cause string) IntentResult {
	return IntentResult{
		Intent:     IntentGeneralInfo,
		Entities:   EntityRecord{},
		Confidence: 0.0,
		Error:      cause,
	}
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}
