// Package runner implements the Runner component: it owns at most one
// in-flight Run, translates a (commit, host) pair into a job list, drives
// each job through an Executor, and publishes status transitions to the
// Forge.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/runoshun/pulld/internal/domain"
	"github.com/runoshun/pulld/internal/workflow"
)

// NewExecutorFunc constructs a fresh Executor for a single job invocation.
// Each job gets its own Executor so Cancel unambiguously targets the job
// currently running.
type NewExecutorFunc func() domain.Executor

// Runner owns at most one non-terminal Run at a time.
type Runner struct {
	git     domain.Git
	forge   domain.Forge
	logger  domain.Logger
	newExec NewExecutorFunc

	mu      sync.Mutex
	current *inflight
}

// inflight tracks the goroutine-driven Run currently owned by the Runner.
type inflight struct {
	commit domain.CommitId
	done   chan struct{}

	mu         sync.Mutex
	cancelled  bool
	cancelOnce sync.Once
	activeExec domain.Executor
}

func (r *inflight) cancel() {
	r.cancelOnce.Do(func() {
		r.mu.Lock()
		r.cancelled = true
		exec := r.activeExec
		r.mu.Unlock()
		if exec != nil {
			exec.Cancel()
		}
	})
}

// setActiveExecutor registers exec as the job currently running. If a cancel
// already arrived, exec is cancelled at once so the request is not lost.
func (r *inflight) setActiveExecutor(exec domain.Executor) {
	r.mu.Lock()
	r.activeExec = exec
	cancelled := r.cancelled
	r.mu.Unlock()
	if cancelled {
		exec.Cancel()
	}
}

func (r *inflight) isCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancelled
}

// jobOutputSink forwards each line a job writes to stdout/stderr to the
// logger, one log record per line, so an operator sees live output instead
// of just a terminal success/failure.
type jobOutputSink struct {
	logger domain.Logger
	job    string
	host   domain.HostId
}

func (s jobOutputSink) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		s.logger.Info(line, domain.F("job", s.job), domain.F("host", s.host.String()))
	}
	return len(p), nil
}

// New builds a Runner. newExec is typically executor.NewClient; tests pass
// a fake.
func New(git domain.Git, forge domain.Forge, logger domain.Logger, newExec NewExecutorFunc) *Runner {
	return &Runner{git: git, forge: forge, logger: logger, newExec: newExec}
}

// IsRunning reports whether a Run is currently non-terminal.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return false
	}
	select {
	case <-r.current.done:
		return false
	default:
		return true
	}
}

// CancelRun signals cancellation of the in-flight run, if any, and blocks
// until it terminates.
func (r *Runner) CancelRun() {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()
	if cur == nil {
		return
	}
	cur.cancel()
	<-cur.done
}

// WaitForRun blocks until the in-flight run terminates. It is a no-op if
// no run is in flight.
func (r *Runner) WaitForRun() {
	r.mu.Lock()
	cur := r.current
	r.mu.Unlock()
	if cur == nil {
		return
	}
	<-cur.done
}

// StartRun resets the checkout to commit, reads the workflow config,
// resolves the jobs applicable to host, seeds a Pending status for each,
// and begins executing them sequentially in the background. Precondition:
// !IsRunning().
func (r *Runner) StartRun(ctx context.Context, commit domain.CommitId, host domain.HostId) error {
	if r.IsRunning() {
		return fmt.Errorf("runner: start_run called while a run is in flight")
	}

	r.logger.Info("starting run", domain.F("commit", commit.Short()))

	if err := r.git.ResetHard(commit); err != nil {
		return err
	}

	cfg, err := workflow.ReadConfig(r.git.Path())
	if err != nil {
		return err
	}

	jobs, err := workflow.ResolveJobsForHost(cfg, host)
	if err != nil {
		return err
	}

	for _, nj := range jobs {
		r.publishStatus(ctx, commit, nj.Name, host, domain.Status{
			State:       domain.StatusPending,
			Context:     domain.StatusContext(nj.Name, host),
			Description: fmt.Sprintf("Job %s on host %s is waiting...", nj.Name, host),
		})
	}

	run := &inflight{commit: commit, done: make(chan struct{})}

	r.mu.Lock()
	r.current = run
	r.mu.Unlock()

	go r.runJobs(ctx, run, host, jobs)

	return nil
}

func (r *Runner) runJobs(ctx context.Context, run *inflight, host domain.HostId, jobs []domain.NamedJob) {
	defer close(run.done)

	for _, nj := range jobs {
		if run.isCancelled() {
			// A cancel arrived between jobs; stop before starting the next one.
			return
		}

		r.publishStatus(ctx, run.commit, nj.Name, host, domain.Status{
			State:       domain.StatusPending,
			Context:     domain.StatusContext(nj.Name, host),
			Description: fmt.Sprintf("Job %s on host %s is running...", nj.Name, host),
		})

		exec := r.newExec()
		run.setActiveExecutor(exec)

		script := domain.RenderJobScript(nj.Job.Script)
		cmd := domain.NewJobCommand(script, r.git.Path(),
			"HOST_OS="+runtime.GOOS, "HOST_ARCH="+runtime.GOARCH)

		outcome, err := exec.Run(ctx, cmd, jobOutputSink{logger: r.logger, job: nj.Name, host: host})

		switch outcome.Outcome {
		case domain.OutcomeCancelled:
			r.logger.Info("job cancelled", domain.F("job", nj.Name))
			r.publishStatus(ctx, run.commit, nj.Name, host, domain.Status{
				State:       domain.StatusError,
				Context:     domain.StatusContext(nj.Name, host),
				Description: fmt.Sprintf("Job %s on host %s was canceled", nj.Name, host),
			})
			return
		case domain.OutcomeFailed:
			r.logger.Warn("job failed", domain.F("job", nj.Name), domain.F("error", err))
			r.publishStatus(ctx, run.commit, nj.Name, host, domain.Status{
				State:       domain.StatusFailure,
				Context:     domain.StatusContext(nj.Name, host),
				Description: fmt.Sprintf("Job %s on host %s failed", nj.Name, host),
			})
			return
		default:
			r.logger.Info("job succeeded", domain.F("job", nj.Name))
			r.publishStatus(ctx, run.commit, nj.Name, host, domain.Status{
				State:       domain.StatusSuccess,
				Context:     domain.StatusContext(nj.Name, host),
				Description: fmt.Sprintf("Job %s on host %s was successful", nj.Name, host),
			})
		}
	}

	r.logger.Info("run finished", domain.F("commit", run.commit.Short()))
}

// publishStatus logs and swallows forge errors: the run must not abort
// because the forge is momentarily unreachable.
func (r *Runner) publishStatus(ctx context.Context, commit domain.CommitId, job string, host domain.HostId, status domain.Status) {
	if err := r.forge.SetCommitStatus(ctx, commit, status); err != nil {
		r.logger.Warn("forge status update failed",
			domain.F("job", job), domain.F("host", host.String()), domain.F("error", err))
	}
}
