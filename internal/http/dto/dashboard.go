package dto

import (
	"time"

	"github.com/techcarrot/defectdash/internal/model"
)

// Fixed dashboard palette; the page colors chart segments and the
// status summary from these rather than hardcoding them client-side.
var stateColors = map[model.State]string{
	model.StateNew:      "red",
	model.StateReopen:   "maroon",
	model.StateClosed:   "green",
	model.StateResolved: "orange",
}

var severityColors = map[model.Severity]string{
	model.SeverityCritical:   "darkred",
	model.SeverityHigh:       "red",
	model.SeverityMedium:     "orange",
	model.SeverityLow:        "blue",
	model.SeveritySuggestion: "gray",
	model.SeverityUnknown:    "lightgray",
}

type StateCount struct {
	State string `json:"state"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
	Color    string `json:"color"`
}

type SnapshotResponse struct {
	LoadedAt   time.Time       `json:"loaded_at"`
	Project    string          `json:"project,omitempty"`
	Projects   []string        `json:"projects"`
	Total      int             `json:"total"`
	OpenCount  int             `json:"open_count"`
	States     []StateCount    `json:"states"`
	Severities []SeverityCount `json:"severities"`
}

// ToSnapshotResponse flattens a snapshot's count maps into the fixed
// display orders the charts expect.
func ToSnapshotResponse(s *model.Snapshot, project string, projects []string) *SnapshotResponse {
	resp := &SnapshotResponse{
		LoadedAt:  s.LoadedAt,
		Project:   project,
		Projects:  projects,
		Total:     s.Total,
		OpenCount: s.OpenCount,
	}
	for _, st := range model.StateOrder {
		resp.States = append(resp.States, StateCount{
			State: string(st),
			Count: s.StateCounts[st],
			Color: stateColors[st],
		})
	}
	for _, sev := range model.SeverityOrder {
		resp.Severities = append(resp.Severities, SeverityCount{
			Severity: string(sev),
			Count:    s.SeverityCounts[sev],
			Color:    severityColors[sev],
		})
	}
	return resp
}

type IssueResponse struct {
	ID           string `json:"id"`
	WorkItemType string `json:"work_item_type"`
	Title        string `json:"title"`
	StateDisplay string `json:"state_display"`
	Severity     string `json:"severity"`
	AssignedTo   string `json:"assigned_to"`
	Tags         string `json:"tags"`
	IssueLink    string `json:"issue_link"`
	Project      string `json:"project"`
}

func ToIssueResponse(i model.Issue) IssueResponse {
	return IssueResponse{
		ID:           i.ID,
		WorkItemType: i.WorkItemType,
		Title:        i.Title,
		StateDisplay: i.StateDisplay,
		Severity:     i.Severity,
		AssignedTo:   i.AssignedTo,
		Tags:         i.Tags,
		IssueLink:    i.IssueLink,
		Project:      i.Project,
	}
}

// AssigneeGroup is one drill-down section: all matching issues for one
// assignee, in extraction order.
type AssigneeGroup struct {
	AssignedTo string          `json:"assigned_to"`
	Issues     []IssueResponse `json:"issues"`
}

type IssueListResponse struct {
	Total  int             `json:"total"`
	Groups []AssigneeGroup `json:"groups"`
}

type RefreshResponse struct {
	Status string `json:"status"`
}
