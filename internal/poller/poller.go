// Package poller implements the Poller component: on a fixed interval it
// asks the Git capability for the remote branch tip, and on a change asks
// the Runner to cancel-then-start.
package poller

import (
	"context"
	"time"

	"github.com/runoshun/pulld/internal/domain"
)

// Runner is the subset of internal/runner.Runner the Poller depends on.
type Runner interface {
	IsRunning() bool
	CancelRun()
	StartRun(ctx context.Context, commit domain.CommitId, host domain.HostId) error
	WaitForRun()
}

// Poller drives the fetch/compare/start loop described in spec.md §4.6.
type Poller struct {
	git      domain.Git
	runner   Runner
	logger   domain.Logger
	host     domain.HostId
	interval time.Duration

	shutdown chan struct{}
}

// New builds a Poller. host is the identity used to filter jobs on each
// Run this Poller starts.
func New(git domain.Git, runner Runner, logger domain.Logger, host domain.HostId, interval time.Duration) *Poller {
	return &Poller{
		git:      git,
		runner:   runner,
		logger:   logger,
		host:     host,
		interval: interval,
		shutdown: make(chan struct{}),
	}
}

// Shutdown requests the poll loop stop. It does not cancel an in-flight
// run; Run awaits its natural completion before returning.
func (p *Poller) Shutdown() {
	select {
	case <-p.shutdown:
	default:
		close(p.shutdown)
	}
}

// Run loops until Shutdown is called, fetching the remote tip and starting
// a new Run whenever it advances. It returns once shutdown is observed and
// any in-flight run has completed.
func (p *Poller) Run(ctx context.Context) error {
	lastObserved, err := p.git.CurrentCommit()
	if err != nil {
		return err
	}
	p.logger.Info("poller starting", domain.F("commit", lastObserved.Short()), domain.F("host", p.host.String()))

	for {
		select {
		case <-p.shutdown:
			// A run may still be in flight; let it finish naturally
			// rather than cancelling it (spec: SIGTERM never cancels
			// a run, it only stops future polling).
			p.runner.WaitForRun()
			return nil
		default:
		}

		tip, err := p.git.FetchAndGetRemoteTip(ctx)
		if err != nil {
			p.logger.Warn("fetch failed", domain.F("error", err))
		} else if tip != lastObserved {
			lastObserved = tip
			p.logger.Info("new commit observed", domain.F("commit", tip.Short()))

			if p.runner.IsRunning() {
				p.runner.CancelRun()
			}
			if err := p.runner.StartRun(ctx, tip, p.host); err != nil {
				p.logger.Warn("start_run failed", domain.F("commit", tip.Short()), domain.F("error", err))
			}
		}

		if p.sleepOrShutdown() {
			p.runner.WaitForRun()
			return nil
		}
	}
}

// sleepOrShutdown waits for the poll interval to elapse or for Shutdown to
// be called, whichever comes first. It reports whether shutdown fired.
func (p *Poller) sleepOrShutdown() bool {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-p.shutdown:
		return true
	case <-timer.C:
		return false
	}
}
