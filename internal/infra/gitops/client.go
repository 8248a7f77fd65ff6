// Package gitops implements the Git Capability on top of go-git: clone or
// open the checkout, fetch the watched branch, read HEAD, and hard-reset
// the working tree to a commit.
package gitops

import (
	"context"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/runoshun/pulld/internal/domain"
)

// Client implements domain.Git for a single watched branch of a single
// remote repository, authenticated with an explicit SSH private key (go-git
// has no access to an SSH agent's keys unless one is configured, so the
// key file path is always used directly, per spec).
type Client struct {
	repo   *git.Repository
	path   string
	branch string
	auth   transport.AuthMethod
}

var _ domain.Git = (*Client)(nil)

// OpenOrClone opens an existing checkout at path, or clones sshURL into it
// if it doesn't exist yet, checking out branch. Authentication always uses
// the SSH private key at sshKeyPath.
func OpenOrClone(ctx context.Context, path, sshURL, branch, sshKeyPath string) (*Client, error) {
	auth, err := gitssh.NewPublicKeysFromFile("git", sshKeyPath, "")
	if err != nil {
		return nil, domain.NewGitError("open_or_clone", true, fmt.Errorf("load ssh key: %w", err))
	}

	if _, err := os.Stat(path); err == nil {
		repo, err := git.PlainOpen(path)
		if err != nil {
			return nil, domain.NewGitError("open_or_clone", true, fmt.Errorf("open %s: %w", path, err))
		}
		return &Client{repo: repo, path: path, branch: branch, auth: auth}, nil
	}

	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:           sshURL,
		Auth:          auth,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
	})
	if err != nil {
		return nil, domain.NewGitError("open_or_clone", true, fmt.Errorf("clone %s: %w", sshURL, err))
	}
	return &Client{repo: repo, path: path, branch: branch, auth: auth}, nil
}

// Path returns the local working-tree root.
func (c *Client) Path() string { return c.path }

// CurrentCommit returns the CommitId pointed to by HEAD.
func (c *Client) CurrentCommit() (domain.CommitId, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", domain.NewGitError("current_commit", true, err)
	}
	return domain.NewCommitId(head.Hash().String())
}

// FetchAndGetRemoteTip fetches branch from origin and returns the CommitId
// of origin/<branch>.
func (c *Client) FetchAndGetRemoteTip(ctx context.Context) (domain.CommitId, error) {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		return "", domain.NewGitError("fetch", false, err)
	}

	refSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", c.branch, c.branch))
	err = remote.FetchContext(ctx, &git.FetchOptions{
		Auth:     c.auth,
		RefSpecs: []config.RefSpec{refSpec},
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return "", domain.NewGitError("fetch", false, err)
	}

	ref, err := c.repo.Reference(plumbing.NewRemoteReferenceName("origin", c.branch), true)
	if err != nil {
		return "", domain.NewGitError("fetch", false, fmt.Errorf("resolve origin/%s: %w", c.branch, err))
	}
	return domain.NewCommitId(ref.Hash().String())
}

// ResetHard sets refs/heads/<branch> to commit and hard-resets the working
// tree to it, leaving HEAD pointing at the branch (never detached), so job
// scripts that inspect the branch name see it.
func (c *Client) ResetHard(commit domain.CommitId) error {
	hash := plumbing.NewHash(commit.String())
	branchRef := plumbing.NewBranchReferenceName(c.branch)

	if err := c.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, hash)); err != nil {
		return domain.NewGitError("reset_hard", false, fmt.Errorf("update %s: %w", branchRef, err))
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, branchRef)
	if err := c.repo.Storer.SetReference(head); err != nil {
		return domain.NewGitError("reset_hard", false, fmt.Errorf("update HEAD: %w", err))
	}

	wt, err := c.repo.Worktree()
	if err != nil {
		return domain.NewGitError("reset_hard", false, err)
	}
	if err := wt.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: hash}); err != nil {
		return domain.NewGitError("reset_hard", false, fmt.Errorf("hard reset to %s: %w", commit, err))
	}
	return nil
}
