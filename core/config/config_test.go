package config_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/techcarrot/defectdash/core/config"
)

var _ = Describe("Load", func() {
	setJiraEnv := func() {
		GinkgoT().Setenv("JIRA_URL", "https://team.atlassian.net")
		GinkgoT().Setenv("JIRA_EMAIL", "dash@techcarrot.ae")
		GinkgoT().Setenv("JIRA_API_TOKEN", "tok")
		GinkgoT().Setenv("JIRA_PROJECT_KEY", "PROJ")
	}

	BeforeEach(func() {
		GinkgoT().Setenv("DASH_ENV", "test")
	})

	It("fails fast when no upstream is configured", func() {
		_, err := config.Load()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("no upstream configured"))
	})

	It("loads defaults with one upstream configured", func() {
		setJiraEnv()

		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.DataDir).To(Equal("data"))
		Expect(cfg.Refresh.Interval).To(Equal(180 * time.Second))
		Expect(cfg.Refresh.HTTPTimeout).To(Equal(30 * time.Second))
		Expect(cfg.Jira.Enabled()).To(BeTrue())
		Expect(cfg.DevOps.Enabled()).To(BeFalse())
	})

	It("accepts intervals as durations or plain seconds", func() {
		setJiraEnv()
		GinkgoT().Setenv("REFRESH_INTERVAL", "120")
		GinkgoT().Setenv("UPSTREAM_HTTP_TIMEOUT", "45s")

		cfg, err := config.Load()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Refresh.Interval).To(Equal(120 * time.Second))
		Expect(cfg.Refresh.HTTPTimeout).To(Equal(45 * time.Second))
	})
})
