// Package testutil provides hand-written test doubles for pulld's port
// interfaces (domain.Git, domain.Forge, domain.Executor, domain.Logger),
// following the teacher repo's convention of plain structs recording calls
// rather than a mocking framework.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/runoshun/pulld/internal/domain"
)

// FakeGit is an in-memory double for domain.Git.
type FakeGit struct {
	mu sync.Mutex

	PathValue       string
	Current         domain.CommitId
	RemoteTip       domain.CommitId
	FetchErr        error
	ResetErr        error
	ResetCalls      []domain.CommitId
}

var _ domain.Git = (*FakeGit)(nil)

func (g *FakeGit) Path() string { return g.PathValue }

func (g *FakeGit) CurrentCommit() (domain.CommitId, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Current, nil
}

func (g *FakeGit) FetchAndGetRemoteTip(ctx context.Context) (domain.CommitId, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FetchErr != nil {
		return "", g.FetchErr
	}
	return g.RemoteTip, nil
}

func (g *FakeGit) ResetHard(commit domain.CommitId) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ResetCalls = append(g.ResetCalls, commit)
	if g.ResetErr != nil {
		return g.ResetErr
	}
	g.Current = commit
	return nil
}

// StatusCall records one SetCommitStatus invocation.
type StatusCall struct {
	Sha    domain.CommitId
	Status domain.Status
}

// FakeForge is an in-memory double for domain.Forge.
type FakeForge struct {
	mu sync.Mutex

	Owner, Repo string
	SetErr      error
	Calls       []StatusCall
}

var _ domain.Forge = (*FakeForge)(nil)

func (f *FakeForge) GitSSHURL() string {
	return fmt.Sprintf("git@github.com:%s/%s.git", f.Owner, f.Repo)
}

func (f *FakeForge) GetCommitStatuses(ctx context.Context, sha domain.CommitId) ([]domain.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Status
	for _, c := range f.Calls {
		if c.Sha == sha {
			result = append(result, c.Status)
		}
	}
	return result, nil
}

func (f *FakeForge) SetCommitStatus(ctx context.Context, sha domain.CommitId, status domain.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Calls = append(f.Calls, StatusCall{Sha: sha, Status: status})
	return nil
}

// CallsForContext returns the status calls recorded for a given context,
// in call order, for asserting monotone transitions (spec §8 property 5).
func (f *FakeForge) CallsForContext(context string) []domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []domain.Status
	for _, c := range f.Calls {
		if c.Status.Context == context {
			result = append(result, c.Status)
		}
	}
	return result
}

// FakeExecutor is a scriptable double for domain.Executor: a test supplies
// the outcome and optionally blocks Run until a release channel fires, to
// simulate a long-running job that is then cancelled.
type FakeExecutor struct {
	mu sync.Mutex

	Outcome  domain.JobOutcome
	Err      error
	blocking bool // if true, Run waits for Cancel before returning
	cancelCh chan struct{}
	once     sync.Once
}

var _ domain.Executor = (*FakeExecutor)(nil)

// NewFakeExecutor returns an executor that completes immediately with
// outcome/err.
func NewFakeExecutor(outcome domain.JobOutcome, err error) *FakeExecutor {
	return &FakeExecutor{Outcome: outcome, Err: err, cancelCh: make(chan struct{})}
}

// NewBlockingFakeExecutor returns an executor whose Run blocks until
// Cancel is called, then reports Cancelled.
func NewBlockingFakeExecutor() *FakeExecutor {
	return &FakeExecutor{blocking: true, cancelCh: make(chan struct{})}
}

func (e *FakeExecutor) Run(ctx context.Context, cmd *domain.ExecCommand, sink io.Writer) (domain.JobOutcome, error) {
	if !e.blocking {
		return e.Outcome, e.Err
	}
	<-e.cancelCh
	return domain.JobOutcome{Outcome: domain.OutcomeCancelled, ExitCode: -1}, nil
}

func (e *FakeExecutor) Cancel() {
	e.once.Do(func() { close(e.cancelCh) })
}

// NoopLogger discards everything; used where tests don't assert on logs.
type NoopLogger struct{}

var _ domain.Logger = NoopLogger{}

func (NoopLogger) Debug(string, ...domain.Field) {}
func (NoopLogger) Info(string, ...domain.Field)  {}
func (NoopLogger) Warn(string, ...domain.Field)  {}
func (NoopLogger) Error(string, ...domain.Field) {}
func (NoopLogger) Sync() error                   { return nil }
