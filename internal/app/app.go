package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/runoshun/pulld/internal/domain"
	"github.com/runoshun/pulld/internal/infra/executor"
	"github.com/runoshun/pulld/internal/infra/forge"
	"github.com/runoshun/pulld/internal/infra/gitops"
	"github.com/runoshun/pulld/internal/infra/logging"
	"github.com/runoshun/pulld/internal/poller"
	"github.com/runoshun/pulld/internal/runner"
)

// Run builds every capability from cfg and drives the agent until a
// SIGTERM is received and the in-flight run (if any) finishes naturally.
// Startup failures (clone, initial HEAD read, invalid config) are returned
// unwrapped so main can map them to a non-zero exit code.
func Run(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	host, err := resolveHost(cfg.HostIdentifier)
	if err != nil {
		return domain.NewConfigError("resolve_host", true, err)
	}

	forgeClient := forge.NewClient(ctx, cfg.Owner, cfg.Repo, cfg.GitHubToken)

	logger.Info("watching remote", domain.F("url", forgeClient.GitSSHURL()), domain.F("branch", cfg.Branch))

	gitClient, err := gitops.OpenOrClone(ctx, cfg.CheckoutPath, forgeClient.GitSSHURL(), cfg.Branch, cfg.SSHKeyFile)
	if err != nil {
		return err
	}

	if _, err := gitClient.CurrentCommit(); err != nil {
		return err
	}

	r := runner.New(gitClient, forgeClient, logger, func() domain.Executor { return executor.NewClient() })
	p := poller.New(gitClient, r, logger, host, cfg.PollInterval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		logger.Info("received SIGTERM, stopping poller after current cycle")
		p.Shutdown()
	}()

	return p.Run(ctx)
}

func resolveHost(identifier string) (domain.HostId, error) {
	if identifier != "" {
		return domain.NewHostId(identifier)
	}
	return domain.DefaultHostId()
}
