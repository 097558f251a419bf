package aggregate_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/techcarrot/defectdash/core/config"
	"github.com/techcarrot/defectdash/internal/aggregate"
	"github.com/techcarrot/defectdash/internal/model"
	"github.com/techcarrot/defectdash/internal/workbook"
)

var _ = Describe("Loader", func() {
	var (
		ctx      context.Context
		dir      string
		projects []config.Project
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		projects = []config.Project{
			{Name: "OneApp", File: "OneApp Defects.csv"},
			{Name: "Jira PROJ", File: "Jira PROJ Defects.csv"},
		}
	})

	writeWorkbook := func(file string, columns []string, issues []model.Issue) {
		Expect(workbook.Write(filepath.Join(dir, file), columns, issues)).To(Succeed())
	}

	It("yields an empty zero-filled snapshot when no files exist", func() {
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Issues).To(BeEmpty())
		Expect(snapshot.Total).To(BeZero())
		Expect(snapshot.OpenCount).To(BeZero())
		for _, st := range model.StateOrder {
			Expect(snapshot.StateCounts[st]).To(BeZero())
		}
		for _, sev := range model.SeverityOrder {
			Expect(snapshot.SeverityCounts[sev]).To(BeZero())
		}
	})

	It("tags every row with the project of its source file", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
		})
		writeWorkbook("Jira PROJ Defects.csv", workbook.JiraColumns, []model.Issue{
			{ID: "PROJ-1", StateDisplay: "Closed", Severity: "Low"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Total).To(Equal(2))
		Expect(snapshot.Issues[0].Project).To(Equal("OneApp"))
		Expect(snapshot.Issues[1].Project).To(Equal("Jira PROJ"))
	})

	It("keeps duplicate IDs from different sources as distinct rows", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "42", StateDisplay: "New", Severity: "High"},
		})
		writeWorkbook("Jira PROJ Defects.csv", workbook.JiraColumns, []model.Issue{
			{ID: "42", StateDisplay: "Closed", Severity: "Low"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Total).To(Equal(2))
		Expect(snapshot.Issues[0].ID).To(Equal("42"))
		Expect(snapshot.Issues[1].ID).To(Equal("42"))
		Expect(snapshot.Issues[0].Project).NotTo(Equal(snapshot.Issues[1].Project))
	})

	It("restricts the severity histogram to the open subset", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
			{ID: "2", StateDisplay: "Reopen", Severity: "High"},
			{ID: "3", StateDisplay: "Closed", Severity: "Critical"},
			{ID: "4", StateDisplay: "Resolved", Severity: "Low"},
			{ID: "5", StateDisplay: "Blocked", Severity: "Medium"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.OpenCount).To(Equal(3))
		sum := 0
		for _, count := range snapshot.SeverityCounts {
			sum += count
		}
		Expect(sum).To(Equal(snapshot.OpenCount))
		Expect(snapshot.SeverityCounts[model.SeverityHigh]).To(Equal(2))
		Expect(snapshot.SeverityCounts[model.SeverityCritical]).To(BeZero())
	})

	It("treats closed/resolved case-insensitively for the open subset", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "CLOSED", Severity: "High"},
			{ID: "2", StateDisplay: "resolved", Severity: "High"},
			{ID: "3", StateDisplay: "New", Severity: "High"},
		})
		loader := aggregate.NewLoader(dir, projects)

		Expect(loader.Load(ctx, "").OpenCount).To(Equal(1))
	})

	It("re-derives the display state from legacy raw states", func() {
		// A legacy file written before extraction-side mapping carries
		// raw DevOps states in the State column.
		path := filepath.Join(dir, "OneApp Defects.csv")
		Expect(os.WriteFile(path, []byte("ID,Work Item Type,Title,State,Assigned To,Tags,Severity,Issue Links\n"+
			"1,Bug,old row,Active,Lee,,2 - High,#\n"), 0o644)).To(Succeed())
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Issues[0].StateDisplay).To(Equal("Reopen"))
		Expect(snapshot.Issues[0].Severity).To(Equal("High"))
	})

	It("defaults unresolvable severities to Unknown on load", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "whatever"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Issues[0].Severity).To(Equal("Unknown"))
		Expect(snapshot.SeverityCounts[model.SeverityUnknown]).To(Equal(1))
	})

	It("skips a malformed file and loads the rest", func() {
		Expect(os.WriteFile(filepath.Join(dir, "OneApp Defects.csv"),
			[]byte("ID,Title\n\"broken\n"), 0o644)).To(Succeed())
		writeWorkbook("Jira PROJ Defects.csv", workbook.JiraColumns, []model.Issue{
			{ID: "PROJ-1", StateDisplay: "New", Severity: "High"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "")

		Expect(snapshot.Total).To(Equal(1))
		Expect(snapshot.Issues[0].Project).To(Equal("Jira PROJ"))
	})

	It("loads only the selected project when filtered", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
		})
		writeWorkbook("Jira PROJ Defects.csv", workbook.JiraColumns, []model.Issue{
			{ID: "PROJ-1", StateDisplay: "New", Severity: "High"},
		})
		loader := aggregate.NewLoader(dir, projects)

		snapshot := loader.Load(ctx, "Jira PROJ")

		Expect(snapshot.Total).To(Equal(1))
		Expect(snapshot.Issues[0].Project).To(Equal("Jira PROJ"))
	})

	It("is idempotent over an unchanged directory", func() {
		writeWorkbook("OneApp Defects.csv", workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
			{ID: "2", StateDisplay: "Closed", Severity: "Low"},
		})
		loader := aggregate.NewLoader(dir, projects)

		first := loader.Load(ctx, "")
		second := loader.Load(ctx, "")

		Expect(second.Total).To(Equal(first.Total))
		Expect(second.StateCounts).To(Equal(first.StateCounts))
		Expect(second.SeverityCounts).To(Equal(first.SeverityCounts))
	})
})

var _ = Describe("Cache", func() {
	var (
		ctx    context.Context
		dir    string
		loader *aggregate.Loader
		cache  *aggregate.Cache
	)

	projects := []config.Project{{Name: "OneApp", File: "OneApp Defects.csv"}}

	BeforeEach(func() {
		ctx = context.Background()
		dir = GinkgoT().TempDir()
		loader = aggregate.NewLoader(dir, projects)
		cache = aggregate.NewCache(loader)
	})

	It("serves the same snapshot until invalidated", func() {
		first := cache.Get(ctx, "")
		second := cache.Get(ctx, "")
		Expect(second).To(BeIdenticalTo(first))
	})

	It("re-loads from disk after invalidation", func() {
		Expect(cache.Get(ctx, "").Total).To(BeZero())

		Expect(workbook.Write(filepath.Join(dir, "OneApp Defects.csv"), workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
		})).To(Succeed())
		cache.Invalidate()

		Expect(cache.Get(ctx, "").Total).To(Equal(1))
	})

	It("caches per project filter", func() {
		Expect(workbook.Write(filepath.Join(dir, "OneApp Defects.csv"), workbook.BaseColumns, []model.Issue{
			{ID: "1", StateDisplay: "New", Severity: "High"},
		})).To(Succeed())

		Expect(cache.Get(ctx, "OneApp").Total).To(Equal(1))
		Expect(cache.Get(ctx, "Other").Total).To(BeZero())
	})
})
