package domain

// JobTemplate is a named, reusable script body a Job may extend.
type JobTemplate struct {
	Script []string `yaml:"script"`
}

// Job is a named unit of work filtered by host and optionally inheriting
// its script from a JobTemplate.
type Job struct {
	Hosts   []string `yaml:"hosts"`
	Script  []string `yaml:"script"`
	Extends string   `yaml:"extends"`
}

// RunsOnHost reports whether host is a member of the job's Hosts list.
func (j Job) RunsOnHost(host HostId) bool {
	for _, h := range j.Hosts {
		if h == string(host) {
			return true
		}
	}
	return false
}

// WorkflowConfig is the typed representation of deploy.yaml.
type WorkflowConfig struct {
	Jobs         map[string]Job         `yaml:"jobs"`
	JobTemplates map[string]JobTemplate `yaml:"job_templates"`
}

// NamedJob pairs a job name with its fully resolved (template-inherited)
// definition, in the order jobs execute for a Run.
type NamedJob struct {
	Name string
	Job  Job
}
