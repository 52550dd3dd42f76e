package model

// IssueType is the category stored on a reported facility issue
type IssueType string

const (
	IssueElectrical IssueType = "electrical"
	IssueHygiene    IssueType = "hygiene"
	IssueStructural IssueType = "structural"
	IssueEquipment  IssueType = "equipment"
	IssueSecurity   IssueType = "security"
	IssueOther      IssueType = "other"
)

// IssueTypes lists every issue type in prompt order
var IssueTypes = []IssueType{
	IssueElectrical,
	IssueHygiene,
	IssueStructural,
	IssueEquipment,
	IssueSecurity,
	IssueOther,
}

// ParseIssueType matches a free-form label against the known issue types
func ParseIssueType(s string) (IssueType, bool) {
	key := normalizeLabel(s)
	for _, t := range IssueTypes {
		if string(t) == key {
			return t, true
		}
	}
	return "", false
}

// Priority is the urgency stored on a reported facility issue
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every priority from least to most urgent
var Priorities = []Priority{
	PriorityLow,
	PriorityMedium,
	PriorityHigh,
	PriorityUrgent,
}

// ParsePriority matches a free-form label against the known priorities
func ParsePriority(s string) (Priority, bool) {
	key := normalizeLabel(s)
	for _, p := range Priorities {
		if string(p) == key {
			return p, true
		}
	}
	return "", false
}

// ClassificationResult is the (type, priority, rationale) triple for an issue report
type ClassificationResult struct {
	IssueType IssueType `json:"issue_type"`
	Priority  Priority  `json:"priority"`
	Reasoning string    `json:"reasoning"`
}

// DefaultClassification is the safe fallback used when classification fails
func DefaultClassification(reasoning string) ClassificationResult {
	return ClassificationResult{
		IssueType: IssueOther,
		Priority:  PriorityMedium,
		Reasoning: reasoning,
	}
}
