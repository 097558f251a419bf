// Package aggregate turns the per-project workbook files back into one
// in-memory table with derived counts. Loads are full re-reads; the
// files on disk are the only state between cycles.
package aggregate

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/mapper"
	"github.com/techcarrot/defectdash/internal/model"
	"github.com/techcarrot/defectdash/internal/workbook"
)

type Loader struct {
	dataDir  string
	projects []config.Project
}

func NewLoader(dataDir string, projects []config.Project) *Loader {
	return &Loader{dataDir: dataDir, projects: projects}
}

// Projects lists the configured project names in registry order.
func (l *Loader) Projects() []string {
	names := make([]string, len(l.projects))
	for i, p := range l.projects {
		names[i] = p.Name
	}
	return names
}

// Load reads every configured workbook (or only the one matching
// projectFilter when non-empty), tags rows with their project, and
// computes the snapshot. Load never fails: a missing file is a warning,
// a malformed file is skipped whole, and zero readable files yield an
// empty zero-filled snapshot.
func (l *Loader) Load(ctx context.Context, projectFilter string) *model.Snapshot {
	var all []model.Issue

	matched := false
	for _, project := range l.projects {
		if projectFilter != "" && project.Name != projectFilter {
			continue
		}
		matched = true

		path := filepath.Join(l.dataDir, project.File)
		issues, err := workbook.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.WarnContext(ctx, "workbook not yet extracted", "project", project.Name, "file", path)
			} else {
				slog.ErrorContext(ctx, "skipping malformed workbook", "project", project.Name, "file", path, "error", err)
			}
			continue
		}

		for _, issue := range issues {
			all = append(all, l.normalize(issue, project.Name))
		}
	}

	if !matched && projectFilter != "" {
		slog.WarnContext(ctx, "unknown project filter", "project", projectFilter)
	}

	return model.NewSnapshot(all)
}

// normalize re-derives the display fields defensively: current files
// already carry canonical values, but older workbooks (or hand-edited
// ones) may hold raw states and prefixed severities.
func (l *Loader) normalize(issue model.Issue, project string) model.Issue {
	issue.Project = project
	issue.StateDisplay = mapper.DisplayState(issue.State)
	// Load-side severity default is Unknown, unlike extraction's
	// Medium: a row we can't classify here was most likely not written
	// by an extractor, and guessing Medium would hide that.
	issue.Severity = string(mapper.NormalizeSeverity(issue.Severity, model.SeverityUnknown))
	if issue.IssueLink == "" {
		issue.IssueLink = "#"
	}
	return issue
}
