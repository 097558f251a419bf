package model

import "time"

// Snapshot is one load of the aggregate table plus its derived counts.
// It is recomputed on every load and never mutated; callers hold it by
// reference and swap it wholesale on refresh.
type Snapshot struct {
	LoadedAt time.Time `json:"loaded_at"`
	Issues   []Issue   `json:"issues"`

	Total          int              `json:"total"`
	StateCounts    map[State]int    `json:"state_counts"`
	OpenCount      int              `json:"open_count"`
	SeverityCounts map[Severity]int `json:"severity_counts"`
}

// NewSnapshot computes the derived counts for a loaded table.
// The severity histogram covers only the open subset (state not Closed
// and not Resolved, case-insensitive) and is zero-filled for every
// canonical bucket so charts always see the full axis.
func NewSnapshot(issues []Issue) *Snapshot {
	s := &Snapshot{
		LoadedAt:       time.Now().UTC(),
		Issues:         issues,
		Total:          len(issues),
		StateCounts:    make(map[State]int, len(StateOrder)),
		SeverityCounts: make(map[Severity]int, len(SeverityOrder)),
	}

	for _, st := range StateOrder {
		s.StateCounts[st] = 0
	}
	for _, sev := range SeverityOrder {
		s.SeverityCounts[sev] = 0
	}

	for _, issue := range issues {
		for _, st := range StateOrder {
			if issue.StateDisplay == string(st) {
				s.StateCounts[st]++
				break
			}
		}
		if !issue.Open() {
			continue
		}
		s.OpenCount++
		bucket := SeverityUnknown
		for _, sev := range SeverityOrder {
			if issue.Severity == string(sev) {
				bucket = sev
				break
			}
		}
		s.SeverityCounts[bucket]++
	}

	return s
}
