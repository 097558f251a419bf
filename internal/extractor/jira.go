package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/techcarrot/defectdash/common/logger"
	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/mapper"
	"github.com/techcarrot/defectdash/internal/model"
	"github.com/techcarrot/defectdash/internal/workbook"
)

const jiraPageSize = 100

// JiraExtractor pulls defects through the paginated search/jql
// endpoint. Unlike the DevOps variant there are no per-item calls; a
// failed page halts pagination but whatever was already fetched is
// still written out.
type JiraExtractor struct {
	cfg    config.JiraConfig
	client *http.Client
	path   string
}

func NewJira(cfg config.JiraConfig, dataDir string, timeout time.Duration) *JiraExtractor {
	return &JiraExtractor{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		path:   filepath.Join(dataDir, cfg.WorkbookFile()),
	}
}

func (e *JiraExtractor) Name() string { return "jira" }

func (e *JiraExtractor) Run(ctx context.Context) (int, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Source:    logger.Ptr(e.Name()),
		Project:   logger.Ptr(e.cfg.ProjectKey),
		Component: "defectdash.extractor.jira",
	})
	start := time.Now()

	// Which field holds severity differs per Jira project configuration.
	// Detection failure is tolerated; the mapper's fallback chain still
	// has the well-known names and the priority field.
	severityFields, err := e.detectSeverityFields(ctx)
	if err != nil {
		slog.WarnContext(ctx, "severity field detection failed, relying on fallbacks", "error", err)
	} else if len(severityFields) > 0 {
		slog.DebugContext(ctx, "detected severity custom fields", "fields", severityFields)
	}

	m := mapper.NewJiraMapper(e.cfg.BaseURL, severityFields)
	jql := e.buildJQL()
	slog.InfoContext(ctx, "fetching issues", "jql", jql)

	var issues []model.Issue
	nextPageToken := ""
	firstPage := true
	for {
		page, err := e.fetchPage(ctx, jql, nextPageToken)
		if err != nil {
			// A cancelled run is fatal regardless of how far pagination
			// got; writing the fragment would masquerade as a complete
			// extraction.
			if ctx.Err() != nil {
				return 0, fmt.Errorf("fetching page: %w", err)
			}
			if firstPage {
				// Nothing fetched yet; treat like an auth/query failure
				// and leave the previous workbook alone.
				return 0, fmt.Errorf("fetching first page: %w", err)
			}
			// Partial result is kept, pagination just stops early.
			slog.WarnContext(ctx, "pagination halted, keeping partial result",
				"error", err, "rows_so_far", len(issues))
			break
		}
		firstPage = false

		for _, raw := range page.Issues {
			issues = append(issues, m.Map(raw))
		}

		nextPageToken = page.NextPageToken
		if page.IsLast || nextPageToken == "" {
			break
		}
	}

	// An empty result still replaces the workbook with a header-only
	// file; stale rows must not survive the cycle.
	if err := workbook.Write(e.path, workbook.JiraColumns, issues); err != nil {
		return 0, fmt.Errorf("writing workbook: %w", err)
	}

	slog.InfoContext(ctx, "extraction complete",
		"rows", len(issues),
		"elapsed", time.Since(start).Round(time.Millisecond),
		"file", e.path)
	return len(issues), nil
}

func (e *JiraExtractor) buildJQL() string {
	key := e.cfg.ProjectKey
	if strings.Contains(key, " ") {
		key = fmt.Sprintf("%q", key)
	}
	jql := fmt.Sprintf("project = %s AND type = Bug", key)
	if e.cfg.LabelFilter != "" {
		jql += fmt.Sprintf(" AND labels = %q", e.cfg.LabelFilter)
	}
	return jql + " ORDER BY created DESC"
}

type jiraSearchPage struct {
	Issues        []map[string]any `json:"issues"`
	IsLast        bool             `json:"isLast"`
	NextPageToken string           `json:"nextPageToken"`
}

func (e *JiraExtractor) fetchPage(ctx context.Context, jql, nextPageToken string) (*jiraSearchPage, error) {
	params := url.Values{}
	params.Set("jql", jql)
	params.Set("maxResults", fmt.Sprintf("%d", jiraPageSize))
	params.Set("fields", "*all")
	if nextPageToken != "" {
		params.Set("nextPageToken", nextPageToken)
	}

	u := strings.TrimSuffix(e.cfg.BaseURL, "/") + "/rest/api/3/search/jql?" + params.Encode()

	var page jiraSearchPage
	if err := e.getJSON(ctx, u, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (e *JiraExtractor) detectSeverityFields(ctx context.Context) ([]string, error) {
	u := strings.TrimSuffix(e.cfg.BaseURL, "/") + "/rest/api/3/field"

	var fields []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Schema struct {
			Custom string `json:"custom"`
		} `json:"schema"`
	}
	if err := e.getJSON(ctx, u, &fields); err != nil {
		return nil, err
	}

	var detected []string
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Name), "severity") ||
			strings.Contains(strings.ToLower(f.Schema.Custom), "severity") {
			detected = append(detected, f.ID)
		}
	}
	return detected, nil
}

func (e *JiraExtractor) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(e.cfg.Email, e.cfg.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("jira api status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
