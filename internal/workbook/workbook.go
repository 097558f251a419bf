// Package workbook persists canonical issue rows as flat CSV files, one
// file per configured project. Files are the whole source of truth
// between extraction cycles: every write fully replaces the previous
// contents, every read loads the file from scratch.
package workbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/techcarrot/defectdash/internal/model"
)

const (
	ColID            = "ID"
	ColWorkItemType  = "Work Item Type"
	ColTitle         = "Title"
	ColState         = "State"
	ColOriginalState = "Original Jira State"
	ColAssignedTo    = "Assigned To"
	ColTags          = "Tags"
	ColSeverity      = "Severity"
	ColIssueLinks    = "Issue Links"
)

// MissingValue backfills columns that a given file's schema doesn't
// carry at all (e.g. DevOps files have no "Original Jira State").
const MissingValue = "N/A"

// BaseColumns is the DevOps file layout.
var BaseColumns = []string{
	ColID, ColWorkItemType, ColTitle, ColState,
	ColAssignedTo, ColTags, ColSeverity, ColIssueLinks,
}

// JiraColumns additionally keeps the untranslated workflow state.
var JiraColumns = []string{
	ColID, ColWorkItemType, ColTitle, ColState, ColOriginalState,
	ColAssignedTo, ColTags, ColSeverity, ColIssueLinks,
}

// Write replaces the file at path with the given rows. The data is
// written to a temp file in the same directory and renamed into place,
// so a concurrent reader sees either the old file or the new one, never
// a torn write. Zero rows still produce a header-only file.
func Write(path string, columns []string, issues []model.Issue) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing header: %w", err)
	}
	for _, issue := range issues {
		if err := w.Write(record(columns, issue)); err != nil {
			tmp.Close()
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Read loads every row of the file at path. Columns absent from the
// file's header are synthesized with MissingValue for every row; the
// loader decides what to make of them.
func Read(path string) ([]model.Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[name] = i
	}

	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok {
			return MissingValue
		}
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	issues := make([]model.Issue, 0, len(records)-1)
	for _, row := range records[1:] {
		issues = append(issues, model.Issue{
			ID:            cell(row, ColID),
			WorkItemType:  cell(row, ColWorkItemType),
			Title:         cell(row, ColTitle),
			State:         cell(row, ColState),
			OriginalState: cell(row, ColOriginalState),
			AssignedTo:    cell(row, ColAssignedTo),
			Tags:          cell(row, ColTags),
			Severity:      cell(row, ColSeverity),
			IssueLink:     cell(row, ColIssueLinks),
		})
	}
	return issues, nil
}

func record(columns []string, issue model.Issue) []string {
	row := make([]string, len(columns))
	for i, column := range columns {
		switch column {
		case ColID:
			row[i] = issue.ID
		case ColWorkItemType:
			row[i] = issue.WorkItemType
		case ColTitle:
			row[i] = issue.Title
		case ColState:
			row[i] = issue.StateDisplay
		case ColOriginalState:
			row[i] = issue.OriginalState
		case ColAssignedTo:
			row[i] = issue.AssignedTo
		case ColTags:
			row[i] = issue.Tags
		case ColSeverity:
			row[i] = issue.Severity
		case ColIssueLinks:
			row[i] = issue.IssueLink
		}
	}
	return row
}
