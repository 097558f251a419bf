package mapper

import "github.com/techcarrot/defectdash/internal/model"

// stateTable unifies both trackers' workflow vocabularies into the four
// canonical dashboard states. DevOps reports reactivated bugs as
// "Active", which the dashboard shows as "Reopen". Keys are the literal
// upstream spellings.
var stateTable = map[string]model.State{
	// Azure DevOps
	"Active": model.StateReopen,

	// Jira workflows (varies per project configuration)
	"Open":           model.StateNew,
	"New":            model.StateNew,
	"To Do":          model.StateNew,
	"In Progress":    model.StateNew,
	"In Development": model.StateNew,
	"Reopen":         model.StateReopen,
	"Done":           model.StateClosed,
	"Closed":         model.StateClosed,
	"Resolved":       model.StateResolved,
}

// DisplayState maps a raw upstream status to its canonical display
// state. Unrecognized raw states pass through verbatim rather than
// erroring; the dashboard renders them as-is.
func DisplayState(raw string) string {
	if s, ok := stateTable[raw]; ok {
		return string(s)
	}
	return raw
}
