// Package forge implements the Forge Capability against GitHub's commit
// status API.
package forge

import (
	"context"
	"fmt"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/runoshun/pulld/internal/domain"
)

// Client implements domain.Forge against the GitHub REST API.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

var _ domain.Forge = (*Client)(nil)

// NewClient builds a GitHub-backed Forge client authenticated with a
// personal access token.
func NewClient(ctx context.Context, owner, repo, token string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	return &Client{gh: github.NewClient(httpClient), owner: owner, repo: repo}
}

// GitSSHURL returns the SSH clone URL for the tracked repository.
func (c *Client) GitSSHURL() string {
	return fmt.Sprintf("git@github.com:%s/%s.git", c.owner, c.repo)
}

// GetCommitStatuses reads existing statuses for sha. Only the first page is
// fetched; the core run loop never depends on reading statuses back.
func (c *Client) GetCommitStatuses(ctx context.Context, sha domain.CommitId) ([]domain.Status, error) {
	opts := &github.ListOptions{PerPage: 100}
	statuses, _, err := c.gh.Repositories.ListStatuses(ctx, c.owner, c.repo, sha.String(), opts)
	if err != nil {
		return nil, domain.NewForgeError("get_commit_statuses", err)
	}

	result := make([]domain.Status, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, domain.Status{
			State:       stateFromGitHub(s.GetState()),
			Context:     s.GetContext(),
			Description: s.GetDescription(),
			TargetURL:   s.GetTargetURL(),
		})
	}
	return result, nil
}

// SetCommitStatus creates a new commit status. GitHub treats the most
// recent status for a given (sha, context) as authoritative, so repeated
// calls are idempotent in effect even though each call appends a new row.
func (c *Client) SetCommitStatus(ctx context.Context, sha domain.CommitId, status domain.Status) error {
	repoStatus := &github.RepoStatus{
		State:   github.String(stateToGitHub(status.State)),
		Context: github.String(status.Context),
	}
	if status.Description != "" {
		repoStatus.Description = github.String(status.Description)
	}
	if status.TargetURL != "" {
		repoStatus.TargetURL = github.String(status.TargetURL)
	}

	_, _, err := c.gh.Repositories.CreateStatus(ctx, c.owner, c.repo, sha.String(), repoStatus)
	if err != nil {
		return domain.NewForgeError("set_commit_status", err)
	}
	return nil
}

func stateToGitHub(s domain.StatusState) string {
	switch s {
	case domain.StatusPending:
		return "pending"
	case domain.StatusSuccess:
		return "success"
	case domain.StatusFailure:
		return "failure"
	case domain.StatusError:
		return "error"
	default:
		return "error"
	}
}

func stateFromGitHub(s string) domain.StatusState {
	switch s {
	case "pending":
		return domain.StatusPending
	case "success":
		return domain.StatusSuccess
	case "failure":
		return domain.StatusFailure
	default:
		return domain.StatusError
	}
}
