package model

import "strings"

type (
	State    string
	Severity string
)

// Canonical lifecycle states shared by both trackers. Raw states that
// don't map to one of these pass through verbatim.
const (
	StateNew      State = "New"
	StateReopen   State = "Reopen"
	StateClosed   State = "Closed"
	StateResolved State = "Resolved"
)

const (
	SeverityCritical   Severity = "Critical"
	SeverityHigh       Severity = "High"
	SeverityMedium     Severity = "Medium"
	SeverityLow        Severity = "Low"
	SeveritySuggestion Severity = "Suggestion"
	SeverityUnknown    Severity = "Unknown"
)

// SeverityOrder is the fixed display order for severity histograms.
var SeverityOrder = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeveritySuggestion,
	SeverityUnknown,
}

// StateOrder is the fixed display order for status summaries.
var StateOrder = []State{StateNew, StateReopen, StateClosed, StateResolved}

// Issue is one tracked defect in the dashboard's canonical shape.
// IDs are only unique within a source project; Project+ID is the real
// identity, the same literal ID can appear in both trackers.
type Issue struct {
	ID           string `json:"id"`
	WorkItemType string `json:"work_item_type"`
	Title        string `json:"title"`
	State        string `json:"state"`
	StateDisplay string `json:"state_display"`
	// OriginalState carries the untranslated Jira workflow state.
	// DevOps rows don't have one; the loader backfills "N/A".
	OriginalState string `json:"original_state,omitempty"`
	Severity      string `json:"severity"`
	AssignedTo    string `json:"assigned_to"`
	Tags          string `json:"tags"`
	IssueLink     string `json:"issue_link"`
	// Project is assigned by the loader, never by an extractor.
	Project string `json:"project"`
}

// Open reports whether the issue counts toward the open-defect subset.
func (i Issue) Open() bool {
	return !strings.EqualFold(i.StateDisplay, string(StateClosed)) &&
		!strings.EqualFold(i.StateDisplay, string(StateResolved))
}
