package mapper_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/techcarrot/defectdash/internal/mapper"
)

var _ = Describe("JiraMapper", func() {
	var m *mapper.JiraMapper

	BeforeEach(func() {
		m = mapper.NewJiraMapper("https://team.atlassian.net", nil)
	})

	It("maps a fully populated issue", func() {
		issue := m.Map(map[string]any{
			"key": "PROJ-42",
			"fields": map[string]any{
				"issuetype": map[string]any{"name": "Bug"},
				"summary":   "Checkout total wrong",
				"status":    map[string]any{"name": "In Progress"},
				"assignee":  map[string]any{"displayName": "Omar Haddad"},
				"labels":    []any{"payments", "mobile"},
				"Severity":  map[string]any{"value": "1 - Critical"},
			},
		})

		Expect(issue.ID).To(Equal("PROJ-42"))
		Expect(issue.Title).To(Equal("Checkout total wrong"))
		Expect(issue.State).To(Equal("In Progress"))
		Expect(issue.StateDisplay).To(Equal("New"))
		Expect(issue.OriginalState).To(Equal("In Progress"))
		Expect(issue.Severity).To(Equal("Critical"))
		Expect(issue.AssignedTo).To(Equal("Omar Haddad"))
		Expect(issue.Tags).To(Equal("payments, mobile"))
		Expect(issue.IssueLink).To(Equal("https://team.atlassian.net/browse/PROJ-42"))
	})

	It("falls back to the issue key for a missing title", func() {
		issue := m.Map(map[string]any{"key": "PROJ-1", "fields": map[string]any{}})
		Expect(issue.Title).To(Equal("PROJ-1"))
	})

	It("derives severity from priority when no severity field is set", func() {
		issue := m.Map(map[string]any{
			"key": "PROJ-2",
			"fields": map[string]any{
				"priority": map[string]any{"name": "Highest"},
			},
		})
		Expect(issue.Severity).To(Equal("Critical"))
	})

	It("defaults severity to Medium when nothing resolves", func() {
		issue := m.Map(map[string]any{"key": "PROJ-3", "fields": map[string]any{}})
		Expect(issue.Severity).To(Equal("Medium"))
	})

	It("derives the assignee from the email local part as a last resort", func() {
		issue := m.Map(map[string]any{
			"key": "PROJ-4",
			"fields": map[string]any{
				"assignee": map[string]any{"emailAddress": "dana@example.com"},
			},
		})
		Expect(issue.AssignedTo).To(Equal("dana"))
	})

	Describe("severity resolver chain", func() {
		It("tries resolvers in declared order", func() {
			m = mapper.NewJiraMapper("https://team.atlassian.net", []string{"customfield_11111"})
			resolvers := m.SeverityResolvers()

			Expect(resolvers).To(HaveLen(3))
			Expect(resolvers[0].Name).To(Equal("detected_custom_field"))
			Expect(resolvers[1].Name).To(Equal("well_known_field"))
			Expect(resolvers[2].Name).To(Equal("priority"))
		})

		It("prefers a detected custom field over priority", func() {
			m = mapper.NewJiraMapper("https://team.atlassian.net", []string{"customfield_11111"})
			issue := m.Map(map[string]any{
				"key": "PROJ-5",
				"fields": map[string]any{
					"customfield_11111": map[string]any{"value": "Low"},
					"priority":          map[string]any{"name": "Highest"},
				},
			})
			Expect(issue.Severity).To(Equal("Low"))
		})

		It("resolves well-known custom field ids holding plain strings", func() {
			issue := m.Map(map[string]any{
				"key": "PROJ-6",
				"fields": map[string]any{
					"customfield_10010": "Major",
				},
			})
			Expect(issue.Severity).To(Equal("High"))
		})

		It("each resolver declines cleanly on empty fields", func() {
			for _, resolver := range m.SeverityResolvers() {
				_, ok := resolver.Resolve(map[string]any{})
				Expect(ok).To(BeFalse(), "resolver %s should decline", resolver.Name)
			}
		})
	})

	It("defaults the state to Unknown when status is missing", func() {
		issue := m.Map(map[string]any{"key": "PROJ-7", "fields": map[string]any{}})
		Expect(issue.State).To(Equal("Unknown"))
		Expect(issue.StateDisplay).To(Equal("Unknown"))
	})
})
