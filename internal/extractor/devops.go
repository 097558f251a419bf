package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/techcarrot/defectdash/common/logger"
	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/mapper"
	"github.com/techcarrot/defectdash/internal/model"
	"github.com/techcarrot/defectdash/internal/workbook"
)

const devOpsAPIVersion = "7.0"

// DevOpsExtractor runs a saved Azure DevOps query and fetches each
// returned work item individually. The saved-query API has no paging;
// item details are N sequential calls with no batching, matching how
// small the result sets are in practice.
type DevOpsExtractor struct {
	cfg    config.DevOpsConfig
	client *http.Client
	mapper *mapper.DevOpsMapper
	path   string

	// BaseURL is overridable for tests; production always talks to
	// dev.azure.com.
	BaseURL string
}

func NewDevOps(cfg config.DevOpsConfig, dataDir string, timeout time.Duration) *DevOpsExtractor {
	return &DevOpsExtractor{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		mapper:  mapper.NewDevOpsMapper(cfg.Organization, cfg.Project),
		path:    filepath.Join(dataDir, cfg.WorkbookFile()),
		BaseURL: "https://dev.azure.com",
	}
}

func (e *DevOpsExtractor) Name() string { return "devops" }

func (e *DevOpsExtractor) Run(ctx context.Context) (int, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Source:    logger.Ptr(e.Name()),
		Project:   logger.Ptr(e.cfg.Project),
		Component: "defectdash.extractor.devops",
	})
	start := time.Now()

	queryID, err := e.resolveQueryID(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolving saved query %q: %w", e.cfg.QueryPath, err)
	}

	ids, err := e.runQuery(ctx, queryID)
	if err != nil {
		return 0, fmt.Errorf("running saved query: %w", err)
	}
	slog.InfoContext(ctx, "saved query resolved", "query_id", queryID, "work_items", len(ids))

	issues := make([]model.Issue, 0, len(ids))
	for _, id := range ids {
		item, err := e.fetchWorkItem(ctx, id)
		if err != nil {
			// A cancelled run must not write: every remaining fetch
			// would fail instantly and the truncated file would read as
			// a genuinely empty result.
			if ctx.Err() != nil {
				return 0, fmt.Errorf("fetching work item %d: %w", id, err)
			}
			// Per-item failures (timeouts included) skip the item, not
			// the run.
			slog.WarnContext(ctx, "skipping work item", "work_item_id", id, "error", err)
			continue
		}
		issues = append(issues, e.mapper.Map(item))
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := workbook.Write(e.path, workbook.BaseColumns, issues); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}

	slog.InfoContext(ctx, "extraction complete",
		"rows", len(issues),
		"skipped", len(ids)-len(issues),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"file", e.path)
	return len(issues), nil
}

func (e *DevOpsExtractor) resolveQueryID(ctx context.Context) (string, error) {
	u := fmt.Sprintf("%s/%s/%s/_apis/wit/queries/%s?api-version=%s",
		e.BaseURL,
		url.PathEscape(e.cfg.Organization),
		url.PathEscape(e.cfg.Project),
		url.PathEscape(e.cfg.QueryPath),
		devOpsAPIVersion)

	var resp struct {
		ID string `json:"id"`
	}
	if err := e.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("query response carried no id")
	}
	return resp.ID, nil
}

func (e *DevOpsExtractor) runQuery(ctx context.Context, queryID string) ([]int, error) {
	u := fmt.Sprintf("%s/%s/%s/_apis/wit/queries/%s/wiql?api-version=%s",
		e.BaseURL,
		url.PathEscape(e.cfg.Organization),
		url.PathEscape(e.cfg.Project),
		queryID,
		devOpsAPIVersion)

	var resp struct {
		WorkItems []struct {
			ID int `json:"id"`
		} `json:"workItems"`
	}
	if err := e.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, item := range resp.WorkItems {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

func (e *DevOpsExtractor) fetchWorkItem(ctx context.Context, id int) (map[string]any, error) {
	u := fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/%d?api-version=%s&$expand=Relations",
		e.BaseURL,
		url.PathEscape(e.cfg.Organization),
		url.PathEscape(e.cfg.Project),
		id,
		devOpsAPIVersion)

	var item map[string]any
	if err := e.getJSON(ctx, u, &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (e *DevOpsExtractor) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	// DevOps PATs go in the password slot with an empty username.
	req.SetBasicAuth("", e.cfg.PAT)

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("devops api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
