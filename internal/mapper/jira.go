package mapper

import (
	"strings"

	"github.com/techcarrot/defectdash/internal/model"
)

// wellKnownSeverityFields are field keys that commonly hold severity
// when the project hasn't exposed a schema-detectable custom field.
var wellKnownSeverityFields = []string{
	"Severity", "severity", "SEVERITY",
	"customfield_10010", "customfield_10020", "customfield_10030",
	"customfield_10040", "customfield_10050",
}

// SeverityResolver is one step of the Jira severity fallback chain: it
// either produces a bucketed severity from the issue's fields or
// declines. The field that actually holds severity is not stable across
// Jira project configurations, so resolution is an ordered sequence of
// these rather than a single lookup.
type SeverityResolver struct {
	Name    string
	Resolve func(fields map[string]any) (model.Severity, bool)
}

// JiraMapper normalizes one Jira search result issue into a canonical
// issue.
type JiraMapper struct {
	BaseURL string
	// DetectedSeverityFields are custom field IDs whose schema name
	// contains "severity", discovered via the field metadata endpoint.
	// Tried first; may be empty.
	DetectedSeverityFields []string
	// DefaultSeverity is applied when the whole resolver chain declines.
	DefaultSeverity model.Severity
}

func NewJiraMapper(baseURL string, detectedSeverityFields []string) *JiraMapper {
	return &JiraMapper{
		BaseURL:                strings.TrimSuffix(baseURL, "/"),
		DetectedSeverityFields: detectedSeverityFields,
		DefaultSeverity:        model.SeverityMedium,
	}
}

// SeverityResolvers returns the fallback chain in resolution order.
func (m *JiraMapper) SeverityResolvers() []SeverityResolver {
	return []SeverityResolver{
		{Name: "detected_custom_field", Resolve: m.resolveDetectedField},
		{Name: "well_known_field", Resolve: m.resolveWellKnownField},
		{Name: "priority", Resolve: m.resolvePriority},
	}
}

// Map never fails; see DevOpsMapper.Map.
func (m *JiraMapper) Map(issue map[string]any) model.Issue {
	key := stringField(issue, "key", "id")
	fields := objectField(issue, "fields")
	if fields == nil {
		fields = map[string]any{}
	}

	workItemType := "Bug"
	if issueType := objectField(fields, "issuetype", "Type", "type"); issueType != nil {
		if name := stringField(issueType, "name"); name != "" {
			workItemType = name
		}
	}

	title := stringField(fields, "summary", "Summary", "Work", "work")
	if title == "" {
		title = key
	}

	rawState := "Unknown"
	if status := objectField(fields, "status", "Status"); status != nil {
		if name := stringField(status, "name"); name != "" {
			rawState = name
		}
	}

	assignedTo := "Unassigned"
	if assignee := objectField(fields, "assignee", "Assignee"); assignee != nil {
		if name := m.assigneeName(assignee); name != "" {
			assignedTo = name
		}
	}

	var tags []string
	for _, label := range listField(fields, "labels", "Labels") {
		if s, ok := label.(string); ok && s != "" {
			tags = append(tags, s)
		}
	}

	return model.Issue{
		ID:            key,
		WorkItemType:  workItemType,
		Title:         title,
		State:         rawState,
		StateDisplay:  DisplayState(rawState),
		OriginalState: rawState,
		Severity:      string(m.severity(fields)),
		AssignedTo:    assignedTo,
		Tags:          strings.Join(tags, ", "),
		IssueLink:     m.issueLink(key),
	}
}

func (m *JiraMapper) severity(fields map[string]any) model.Severity {
	for _, resolver := range m.SeverityResolvers() {
		if sev, ok := resolver.Resolve(fields); ok {
			return sev
		}
	}
	return m.DefaultSeverity
}

func (m *JiraMapper) resolveDetectedField(fields map[string]any) (model.Severity, bool) {
	return m.resolveNamedFields(fields, m.DetectedSeverityFields)
}

func (m *JiraMapper) resolveWellKnownField(fields map[string]any) (model.Severity, bool) {
	return m.resolveNamedFields(fields, wellKnownSeverityFields)
}

func (m *JiraMapper) resolveNamedFields(fields map[string]any, names []string) (model.Severity, bool) {
	for _, name := range names {
		raw := severityValue(fields[name])
		if raw == "" {
			continue
		}
		return NormalizeSeverity(raw, m.DefaultSeverity), true
	}
	return "", false
}

func (m *JiraMapper) resolvePriority(fields map[string]any) (model.Severity, bool) {
	priority := objectField(fields, "priority", "Priority")
	if priority == nil {
		return "", false
	}
	name := stringField(priority, "name")
	if name == "" {
		return "", false
	}
	return SeverityFromPriority(name, m.DefaultSeverity), true
}

// severityValue unwraps the shapes a severity custom field shows up in:
// a select-option object, a plain string, or occasionally a number.
func severityValue(v any) string {
	switch value := v.(type) {
	case map[string]any:
		return stringField(value, "value", "name", "displayName")
	case string:
		return value
	case float64:
		return formatNumber(value)
	default:
		return ""
	}
}

func (m *JiraMapper) assigneeName(assignee map[string]any) string {
	if name := stringField(assignee, "displayName", "name"); name != "" {
		return name
	}
	if email := stringField(assignee, "emailAddress"); email != "" {
		return strings.SplitN(email, "@", 2)[0]
	}
	return ""
}

func (m *JiraMapper) issueLink(key string) string {
	if key == "" || m.BaseURL == "" {
		return "#"
	}
	return m.BaseURL + "/browse/" + key
}
