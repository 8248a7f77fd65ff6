// Package workflow implements the Workflow Model: reading deploy.yaml and
// resolving the jobs applicable to a given host, with template
// inheritance.
package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/pulld/internal/domain"
)

// ReadConfig reads <folder>/deploy.yaml and parses it into a WorkflowConfig.
func ReadConfig(folder string) (*domain.WorkflowConfig, error) {
	path := filepath.Join(folder, "deploy.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewConfigError("read_config", false, fmt.Errorf("not found: %s", path))
		}
		return nil, domain.NewConfigError("read_config", false, err)
	}

	var cfg domain.WorkflowConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, domain.NewConfigError("read_config", false, fmt.Errorf("parse %s: %w", path, err))
	}
	return &cfg, nil
}

// ResolveJobsForHost produces the ordered list of (name, Job) pairs whose
// hosts list contains hostID, with template inheritance applied. The
// sequence is sorted by job name ascending for a deterministic execution
// order, since YAML mapping order is not guaranteed.
func ResolveJobsForHost(cfg *domain.WorkflowConfig, hostID domain.HostId) ([]domain.NamedJob, error) {
	names := make([]string, 0, len(cfg.Jobs))
	for name := range cfg.Jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	var resolved []domain.NamedJob
	for _, name := range names {
		job := cfg.Jobs[name]

		if job.Extends != "" {
			tmpl, ok := cfg.JobTemplates[job.Extends]
			if !ok {
				return nil, domain.NewConfigError("resolve_jobs_for_host", false,
					fmt.Errorf("%w: job %q extends %q", domain.ErrTemplateNotFound, name, job.Extends))
			}
			if len(job.Script) == 0 {
				job.Script = tmpl.Script
			}
		}

		if !job.RunsOnHost(hostID) {
			continue
		}

		resolved = append(resolved, domain.NamedJob{Name: name, Job: job})
	}
	return resolved, nil
}
