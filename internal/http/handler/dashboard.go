package handler

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/techcarrot/defectdash/internal/http/dto"
	"github.com/techcarrot/defectdash/internal/model"
)

// SnapshotProvider hands out the current aggregate snapshot.
type SnapshotProvider interface {
	Get(ctx context.Context, projectFilter string) *model.Snapshot
	Projects() []string
}

// Refresher schedules an immediate extraction cycle.
type Refresher interface {
	TriggerNow() bool
}

type DashboardHandler struct {
	snapshots SnapshotProvider
	refresher Refresher
}

func NewDashboardHandler(snapshots SnapshotProvider, refresher Refresher) *DashboardHandler {
	return &DashboardHandler{snapshots: snapshots, refresher: refresher}
}

// Snapshot returns the summary counters and both histograms for the
// selected project (all projects when none selected).
func (h *DashboardHandler) Snapshot(c *gin.Context) {
	ctx := c.Request.Context()
	project := c.Query("project")

	snapshot := h.snapshots.Get(ctx, project)
	c.JSON(http.StatusOK, dto.ToSnapshotResponse(snapshot, project, h.snapshots.Projects()))
}

// Issues returns the drill-down list, filtered by whatever chart
// category was clicked and grouped by assignee. Filters compose: a
// state click and a severity click can both be active.
func (h *DashboardHandler) Issues(c *gin.Context) {
	ctx := c.Request.Context()
	project := c.Query("project")
	state := c.Query("state")
	severity := c.Query("severity")
	openOnly := c.Query("open") == "true"

	snapshot := h.snapshots.Get(ctx, project)

	var matched []model.Issue
	for _, issue := range snapshot.Issues {
		if state != "" && !strings.EqualFold(issue.StateDisplay, state) {
			continue
		}
		if severity != "" && !strings.EqualFold(issue.Severity, severity) {
			continue
		}
		if openOnly && !issue.Open() {
			continue
		}
		matched = append(matched, issue)
	}

	c.JSON(http.StatusOK, groupByAssignee(matched))
}

// Refresh triggers an extraction cycle outside the timer (the manual
// refresh button). The cycle runs in the scheduler's goroutine; the UI
// is never blocked behind upstream calls.
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if h.refresher.TriggerNow() {
		c.JSON(http.StatusAccepted, dto.RefreshResponse{Status: "refresh scheduled"})
		return
	}
	c.JSON(http.StatusAccepted, dto.RefreshResponse{Status: "refresh already in progress"})
}

func groupByAssignee(issues []model.Issue) dto.IssueListResponse {
	byAssignee := make(map[string][]dto.IssueResponse)
	for _, issue := range issues {
		byAssignee[issue.AssignedTo] = append(byAssignee[issue.AssignedTo], dto.ToIssueResponse(issue))
	}

	names := make([]string, 0, len(byAssignee))
	for name := range byAssignee {
		names = append(names, name)
	}
	// Alphabetical, with Unassigned last.
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "Unassigned") != (names[j] == "Unassigned") {
			return names[j] == "Unassigned"
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	resp := dto.IssueListResponse{Total: len(issues), Groups: []dto.AssigneeGroup{}}
	for _, name := range names {
		resp.Groups = append(resp.Groups, dto.AssigneeGroup{
			AssignedTo: name,
			Issues:     byAssignee[name],
		})
	}
	return resp
}
