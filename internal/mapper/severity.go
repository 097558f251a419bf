package mapper

import (
	"regexp"
	"strings"

	"github.com/techcarrot/defectdash/internal/model"
)

// DevOps prefixes severities with a sort key ("1 - Critical"); strip it
// before bucket matching.
var numericPrefix = regexp.MustCompile(`^\d+\s*-\s*`)

var severityTable = map[string]model.Severity{
	"critical":   model.SeverityCritical,
	"blocker":    model.SeverityCritical,
	"high":       model.SeverityHigh,
	"major":      model.SeverityHigh,
	"medium":     model.SeverityMedium,
	"moderate":   model.SeverityMedium,
	"low":        model.SeverityLow,
	"minor":      model.SeverityLow,
	"trivial":    model.SeveritySuggestion,
	"suggestion": model.SeveritySuggestion,
}

// priorityTable covers Jira projects that never configured a severity
// field; the issue priority is the closest available signal.
var priorityTable = map[string]model.Severity{
	"highest": model.SeverityCritical,
	"blocker": model.SeverityCritical,
	"high":    model.SeverityHigh,
	"medium":  model.SeverityMedium,
	"low":     model.SeverityLow,
	"minor":   model.SeverityLow,
	"lowest":  model.SeveritySuggestion,
	"trivial": model.SeveritySuggestion,
}

// NormalizeSeverity buckets a raw severity string. The two pipeline
// stages disagree on what an unresolvable severity means (extraction
// assumes Medium, loading assumes Unknown), so the default is the
// caller's named choice rather than a constant baked in here.
func NormalizeSeverity(raw string, fallback model.Severity) model.Severity {
	raw = strings.TrimSpace(numericPrefix.ReplaceAllString(strings.TrimSpace(raw), ""))
	if raw == "" {
		return fallback
	}
	if sev, ok := severityTable[strings.ToLower(raw)]; ok {
		return sev
	}
	return fallback
}

// SeverityFromPriority maps a Jira priority name to a severity bucket.
func SeverityFromPriority(priority string, fallback model.Severity) model.Severity {
	if sev, ok := priorityTable[strings.ToLower(strings.TrimSpace(priority))]; ok {
		return sev
	}
	return fallback
}
