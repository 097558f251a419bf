package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env          string
	Port         string
	DataDir      string
	ProjectsFile string
	OTel         OTelConfig
	DevOps       DevOpsConfig
	Jira         JiraConfig
	Refresh      RefreshConfig
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

type DevOpsConfig struct {
	Organization string
	Project      string
	PAT          string
	QueryPath    string
}

type JiraConfig struct {
	BaseURL     string
	Email       string
	APIToken    string
	ProjectKey  string
	LabelFilter string
}

type RefreshConfig struct {
	// Interval between extraction cycles. Observed deployments run
	// between 120 and 300 seconds.
	Interval time.Duration
	// HTTPTimeout bounds each individual upstream call; a timed-out
	// call is skipped, not retried.
	HTTPTimeout time.Duration
}

// Load loads configuration from environment variables. In development
// it first reads .env from the working directory.
func Load() (Config, error) {
	if getEnv("DASH_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:          getEnv("DASH_ENV", "development"),
		Port:         getEnv("PORT", "8080"),
		DataDir:      getEnv("DATA_DIR", "data"),
		ProjectsFile: getEnv("PROJECTS_FILE", ""),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "defectdash"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		DevOps: DevOpsConfig{
			Organization: getEnv("DEVOPS_ORGANIZATION", ""),
			Project:      getEnv("DEVOPS_PROJECT", ""),
			PAT:          getEnv("DEVOPS_PAT", ""),
			QueryPath:    getEnv("DEVOPS_QUERY_PATH", ""),
		},
		Jira: JiraConfig{
			BaseURL:     getEnv("JIRA_URL", ""),
			Email:       getEnv("JIRA_EMAIL", ""),
			APIToken:    getEnv("JIRA_API_TOKEN", ""),
			ProjectKey:  getEnv("JIRA_PROJECT_KEY", ""),
			LabelFilter: getEnv("JIRA_LABEL_FILTER", ""),
		},
		Refresh: RefreshConfig{
			Interval:    getEnvDuration("REFRESH_INTERVAL", 180*time.Second),
			HTTPTimeout: getEnvDuration("UPSTREAM_HTTP_TIMEOUT", 30*time.Second),
		},
	}

	if !cfg.DevOps.Enabled() && !cfg.Jira.Enabled() {
		return Config{}, fmt.Errorf("no upstream configured: set DEVOPS_* or JIRA_* variables")
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c DevOpsConfig) Enabled() bool {
	return c.Organization != "" && c.Project != "" && c.PAT != "" && c.QueryPath != ""
}

// WorkbookFile is the base name of the workbook this source overwrites
// each cycle.
func (c DevOpsConfig) WorkbookFile() string {
	return fmt.Sprintf("%s Defects.csv", c.Project)
}

func (c JiraConfig) Enabled() bool {
	return c.BaseURL != "" && c.Email != "" && c.APIToken != "" && c.ProjectKey != ""
}

func (c JiraConfig) WorkbookFile() string {
	return fmt.Sprintf("Jira %s Defects.csv", c.ProjectKey)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		// Plain numbers are read as seconds (how the deployment scripts
		// have always spelled intervals).
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
