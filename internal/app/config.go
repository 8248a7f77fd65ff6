// Package app wires pulld's capabilities together (the Supervisor):
// parses configuration, constructs the Forge and Git capabilities, builds
// the Runner and Poller, and owns the SIGTERM-driven shutdown sequence.
package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/runoshun/pulld/internal/domain"
)

// Config holds the fully-resolved startup configuration for the agent, the
// Go analogue of the original cli.rs flag struct.
type Config struct {
	Backend        string
	Owner          string
	Repo           string
	Branch         string
	CheckoutPath   string
	SSHKeyFile     string
	PollInterval   time.Duration
	GitHubToken    string
	HostIdentifier string
	Debug          bool
}

// Validate checks the fields that cobra's flag parsing cannot express on
// its own: the backend whitelist, the required owner/repo/checkout
// path/SSH key, and the one-of token requirement.
func (c Config) Validate() error {
	if c.Backend != "github" {
		return domain.NewConfigError("validate_config", true,
			fmt.Errorf("unsupported --backend %q: only \"github\" is implemented", c.Backend))
	}
	if c.Owner == "" || c.Repo == "" || c.CheckoutPath == "" || c.SSHKeyFile == "" {
		return domain.NewConfigError("validate_config", true,
			fmt.Errorf("--owner, --repo, --checkout_path and --ssh_key_file are required"))
	}
	if c.GitHubToken == "" {
		return domain.NewConfigError("validate_config", true,
			fmt.Errorf("one of --github_token or --github_token_file is required"))
	}
	return nil
}

// ResolveGitHubToken reads and trims the token file if tokenFile is set and
// token itself is empty, matching the original cli.rs's documented
// "trimmed" contract for --github_token_file.
func ResolveGitHubToken(token, tokenFile string) (string, error) {
	if token != "" {
		return token, nil
	}
	if tokenFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return "", domain.NewConfigError("read_github_token_file", true, err)
	}
	return strings.TrimSpace(string(data)), nil
}
