package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/pulld/internal/domain"
)

func validConfig() Config {
	return Config{
		Backend:      "github",
		Owner:        "acme",
		Repo:         "widgets",
		CheckoutPath: "/tmp/widgets",
		SSHKeyFile:   "/tmp/key",
		GitHubToken:  "t0k3n",
	}
}

func TestConfig_Validate_HappyPath(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_RejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Backend = "gitlab"
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, cfg.Validate(), &cfgErr)
}

func TestConfig_Validate_RequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.GitHubToken = ""
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_RequiresOwnerRepoPathKey(t *testing.T) {
	for name, unset := range map[string]func(*Config){
		"owner":         func(c *Config) { c.Owner = "" },
		"repo":          func(c *Config) { c.Repo = "" },
		"checkout_path": func(c *Config) { c.CheckoutPath = "" },
		"ssh_key_file":  func(c *Config) { c.SSHKeyFile = "" },
	} {
		cfg := validConfig()
		unset(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}

func TestResolveGitHubToken_PrefersDirectToken(t *testing.T) {
	tok, err := ResolveGitHubToken("direct", "")
	require.NoError(t, err)
	assert.Equal(t, "direct", tok)
}

func TestResolveGitHubToken_ReadsAndTrimsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))

	tok, err := ResolveGitHubToken("", path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", tok)
}

func TestResolveGitHubToken_NeitherSetReturnsEmpty(t *testing.T) {
	tok, err := ResolveGitHubToken("", "")
	require.NoError(t, err)
	assert.Empty(t, tok)
}
