package mapper

import (
	"fmt"

	"github.com/techcarrot/defectdash/internal/model"
)

// Azure DevOps work item field reference names.
const (
	devOpsFieldWorkItemType = "System.WorkItemType"
	devOpsFieldTitle        = "System.Title"
	devOpsFieldState        = "System.State"
	devOpsFieldAssignedTo   = "System.AssignedTo"
	devOpsFieldTags         = "System.Tags"
	devOpsFieldSeverity     = "Microsoft.VSTS.Common.Severity"
)

// DevOpsMapper normalizes one Azure DevOps work item payload
// (wit/workitems/{id} response) into a canonical issue.
type DevOpsMapper struct {
	Organization string
	Project      string
	// DefaultSeverity is applied when the severity field is missing or
	// unmapped. The extraction pipeline historically assumes Medium.
	DefaultSeverity model.Severity
}

func NewDevOpsMapper(organization, project string) *DevOpsMapper {
	return &DevOpsMapper{
		Organization:    organization,
		Project:         project,
		DefaultSeverity: model.SeverityMedium,
	}
}

// Map never fails: missing optional fields degrade to documented
// defaults so one malformed record can't abort an extraction cycle.
func (m *DevOpsMapper) Map(item map[string]any) model.Issue {
	id := stringField(item, "id")
	fields := objectField(item, "fields")
	if fields == nil {
		fields = map[string]any{}
	}

	workItemType := stringField(fields, devOpsFieldWorkItemType)
	if workItemType == "" {
		workItemType = "Bug"
	}

	title := stringField(fields, devOpsFieldTitle)
	if title == "" {
		title = id
	}

	assignedTo := "Unassigned"
	if assignee := objectField(fields, devOpsFieldAssignedTo); assignee != nil {
		if name := stringField(assignee, "displayName", "uniqueName"); name != "" {
			assignedTo = name
		}
	}

	rawState := stringField(fields, devOpsFieldState)

	return model.Issue{
		ID:           id,
		WorkItemType: workItemType,
		Title:        title,
		State:        rawState,
		StateDisplay: DisplayState(rawState),
		Severity:     string(NormalizeSeverity(stringField(fields, devOpsFieldSeverity), m.DefaultSeverity)),
		AssignedTo:   assignedTo,
		Tags:         stringField(fields, devOpsFieldTags),
		IssueLink:    m.issueLink(id),
	}
}

func (m *DevOpsMapper) issueLink(id string) string {
	if id == "" {
		return "#"
	}
	return fmt.Sprintf("https://dev.azure.com/%s/%s/_workitems/edit/%s", m.Organization, m.Project, id)
}
