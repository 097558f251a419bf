// Package extractor pulls defect data from the upstream trackers and
// persists it as canonical workbook files. Each extractor owns exactly
// one workbook and fully overwrites it on every successful run.
package extractor

import "context"

// Extractor is one upstream source. Run performs a full extraction
// cycle: fetch, normalize, overwrite the workbook. It returns the
// number of rows written.
//
// Failure semantics are shared across sources: an auth or query
// resolution failure aborts the run with an error and leaves the prior
// workbook untouched; a failure on an individual item (or a later page)
// is logged and skipped without failing the run.
type Extractor interface {
	Name() string
	Run(ctx context.Context) (int, error)
}
