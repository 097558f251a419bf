package mapper_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/techcarrot/defectdash/internal/mapper"
	"github.com/techcarrot/defectdash/internal/model"
)

var _ = Describe("NormalizeSeverity", func() {
	It("strips numeric sort prefixes before matching", func() {
		Expect(mapper.NormalizeSeverity("1 - Critical", model.SeverityUnknown)).To(Equal(model.SeverityCritical))
		Expect(mapper.NormalizeSeverity("2 - High", model.SeverityUnknown)).To(Equal(model.SeverityHigh))
		Expect(mapper.NormalizeSeverity("5 - Suggestion", model.SeverityUnknown)).To(Equal(model.SeveritySuggestion))
		Expect(mapper.NormalizeSeverity("3-Medium", model.SeverityUnknown)).To(Equal(model.SeverityMedium))
	})

	It("matches case-insensitively", func() {
		Expect(mapper.NormalizeSeverity("BLOCKER", model.SeverityUnknown)).To(Equal(model.SeverityCritical))
		Expect(mapper.NormalizeSeverity("major", model.SeverityUnknown)).To(Equal(model.SeverityHigh))
		Expect(mapper.NormalizeSeverity("Trivial", model.SeverityUnknown)).To(Equal(model.SeveritySuggestion))
	})

	It("uses the caller's fallback for empty input", func() {
		Expect(mapper.NormalizeSeverity("", model.SeverityMedium)).To(Equal(model.SeverityMedium))
		Expect(mapper.NormalizeSeverity("  ", model.SeverityUnknown)).To(Equal(model.SeverityUnknown))
	})

	It("uses the caller's fallback for unmapped values", func() {
		Expect(mapper.NormalizeSeverity("Catastrophic", model.SeverityMedium)).To(Equal(model.SeverityMedium))
		Expect(mapper.NormalizeSeverity("N/A", model.SeverityUnknown)).To(Equal(model.SeverityUnknown))
	})

	It("never returns a raw numeric-prefixed string", func() {
		Expect(mapper.NormalizeSeverity("7 - Whatever", model.SeverityUnknown)).To(Equal(model.SeverityUnknown))
	})
})

var _ = Describe("SeverityFromPriority", func() {
	It("maps Jira priorities to severity buckets", func() {
		Expect(mapper.SeverityFromPriority("Highest", model.SeverityUnknown)).To(Equal(model.SeverityCritical))
		Expect(mapper.SeverityFromPriority("High", model.SeverityUnknown)).To(Equal(model.SeverityHigh))
		Expect(mapper.SeverityFromPriority("Medium", model.SeverityUnknown)).To(Equal(model.SeverityMedium))
		Expect(mapper.SeverityFromPriority("Low", model.SeverityUnknown)).To(Equal(model.SeverityLow))
		Expect(mapper.SeverityFromPriority("Lowest", model.SeverityUnknown)).To(Equal(model.SeveritySuggestion))
	})

	It("falls back for unmapped priorities", func() {
		Expect(mapper.SeverityFromPriority("P0", model.SeverityUnknown)).To(Equal(model.SeverityUnknown))
	})
})
