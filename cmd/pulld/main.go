// Command pulld watches a single branch of a remote git repository, checks
// out each new commit, runs its deploy.yaml jobs for the local host, and
// reports status back to the forge as commit statuses.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/pulld/internal/app"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		backend        string
		owner          string
		repo           string
		branch         string
		checkoutPath   string
		sshKeyFile     string
		pollInterval   int
		githubToken    string
		githubTokenF   string
		hostIdentifier string
		debug          bool
	)

	root := &cobra.Command{
		Use:           "pulld",
		Short:         "Host-local deployment agent that polls a git branch and runs deploy jobs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := app.ResolveGitHubToken(githubToken, githubTokenF)
			if err != nil {
				return err
			}

			cfg := app.Config{
				Backend:        backend,
				Owner:          owner,
				Repo:           repo,
				Branch:         branch,
				CheckoutPath:   checkoutPath,
				SSHKeyFile:     sshKeyFile,
				PollInterval:   time.Duration(pollInterval) * time.Second,
				GitHubToken:    token,
				HostIdentifier: hostIdentifier,
				Debug:          debug,
			}

			return app.Run(context.Background(), cfg)
		},
	}

	flags := root.Flags()
	flags.StringVar(&backend, "backend", envDefault("PULLD_BACKEND", ""), "Forge type: github")
	flags.StringVar(&owner, "owner", envDefault("PULLD_OWNER", ""), "Repository owner")
	flags.StringVar(&repo, "repo", envDefault("PULLD_REPO", ""), "Repository name")
	flags.StringVar(&branch, "branch", envDefault("PULLD_BRANCH", "main"), "Branch to watch")
	flags.StringVar(&checkoutPath, "checkout_path", envDefault("PULLD_CHECKOUT_PATH", ""), "Local working-tree path")
	flags.StringVar(&sshKeyFile, "ssh_key_file", envDefault("PULLD_SSH_KEY_FILE", ""), "SSH private key for git")
	flags.IntVar(&pollInterval, "poll_interval", envDefaultIntOr("PULLD_POLL_INTERVAL", 10), "Seconds between polls")
	flags.StringVar(&githubToken, "github_token", envDefault("PULLD_GITHUB_TOKEN", ""), "PAT for forge auth")
	flags.StringVar(&githubTokenF, "github_token_file", envDefault("PULLD_GITHUB_TOKEN_FILE", ""), "File containing PAT (trimmed)")
	flags.StringVar(&hostIdentifier, "host_identifier", envDefault("PULLD_HOST_IDENTIFIER", ""), "HostId reported to forge (default: hostname)")
	flags.BoolVar(&debug, "debug", envDefaultBool("PULLD_DEBUG"), "Enable debug logging")

	return root
}

// envDefault returns the named environment variable's value, or fallback
// if unset. cobra has no native EnvVar binding (unlike clap's env = "..."
// attributes the original CLI used), so each flag's default is resolved
// here, once, before newRootCommand hands the variable to cobra.
func envDefault(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func envDefaultIntOr(name string, fallback int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func envDefaultBool(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && v != "" && v != "0"
}
