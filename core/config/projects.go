package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Project maps a display name to the workbook file that holds its rows.
// The project name, together with the per-source issue ID, forms the
// identity of a row; IDs alone can collide across trackers.
type Project struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

type projectsFile struct {
	Projects []Project `yaml:"projects"`
}

// LoadProjects resolves the project registry. An explicit registry file
// wins; otherwise one project per enabled upstream is derived from the
// source configs.
func LoadProjects(cfg Config) ([]Project, error) {
	if cfg.ProjectsFile != "" {
		return readProjectsFile(cfg.ProjectsFile)
	}

	var projects []Project
	if cfg.DevOps.Enabled() {
		projects = append(projects, Project{
			Name: cfg.DevOps.Project,
			File: cfg.DevOps.WorkbookFile(),
		})
	}
	if cfg.Jira.Enabled() {
		projects = append(projects, Project{
			Name: "Jira " + cfg.Jira.ProjectKey,
			File: cfg.Jira.WorkbookFile(),
		})
	}
	return projects, nil
}

func readProjectsFile(path string) ([]Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading projects file: %w", err)
	}

	var parsed projectsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing projects file: %w", err)
	}

	for i, p := range parsed.Projects {
		if p.Name == "" || p.File == "" {
			return nil, fmt.Errorf("projects file entry %d: name and file are required", i)
		}
	}
	return parsed.Projects, nil
}
