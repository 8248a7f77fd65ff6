package domain

import (
	"context"
	"io"
)

// Git is the Git Capability: clone-or-open, fetch the remote branch tip,
// read current HEAD, and hard-reset the working tree to a commit.
type Git interface {
	// CurrentCommit returns the CommitId pointed to by HEAD.
	CurrentCommit() (CommitId, error)

	// FetchAndGetRemoteTip fetches branch from origin and returns the
	// CommitId of origin/<branch>.
	FetchAndGetRemoteTip(ctx context.Context) (CommitId, error)

	// ResetHard sets refs/heads/<branch> to commit and hard-resets the
	// working tree to it. HEAD remains a branch reference, never detached.
	ResetHard(commit CommitId) error

	// Path returns the local working-tree root.
	Path() string
}

// Forge is the Forge Capability: reading and writing per-commit status
// entries, and providing an SSH clone URL for the tracked repository.
type Forge interface {
	// GitSSHURL returns the SSH clone URL for the tracked repository.
	GitSSHURL() string

	// GetCommitStatuses reads existing statuses for sha. Used for
	// introspection/tests; the core run loop does not depend on it.
	GetCommitStatuses(ctx context.Context, sha CommitId) ([]Status, error)

	// SetCommitStatus is idempotent on (sha, status.Context): repeated
	// calls replace the latest status for that row.
	SetCommitStatus(ctx context.Context, sha CommitId, status Status) error
}

// JobOutcome is the terminal result of a single job execution, reported by
// the Executor.
type JobOutcome struct {
	Outcome  Outcome
	ExitCode int
	Output   []string // captured combined output, one entry per line
}

// Executor runs a single rendered shell script, streaming its combined
// output line-by-line to a log sink and an in-memory buffer, and supports
// cooperative cancellation via Cancel.
type Executor interface {
	// Run spawns cmd, streams output to sink (one Write call per line,
	// newline-terminated), and blocks until the child exits or Cancel is
	// called. It always kills the child (if still alive), joins both
	// output drainers, and collects captured output before returning —
	// regardless of which exit path is taken.
	Run(ctx context.Context, cmd *ExecCommand, sink io.Writer) (JobOutcome, error)

	// Cancel requests termination of the currently running child, if any.
	// It is safe to call at any time and is a one-shot signal per Run call.
	Cancel()
}

// Logger provides structured logging for the daemon. Unlike the teacher's
// per-task file logger, pulld has a single continuous log stream, so
// messages carry a component/category label instead of a task id.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Sync() error
}

// Field is a structured logging key/value pair, mirroring zap.Field
// without leaking the zap type into the domain package.
type Field struct {
	Key   string
	Value any
}

// F constructs a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }
