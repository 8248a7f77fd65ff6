package gitops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/runoshun/pulld/internal/domain"
	"github.com/stretchr/testify/require"
)

// commitFile writes path/name with content and commits it, returning the
// new commit hash.
func commitFile(t *testing.T, repo *git.Repository, dir, name, content, msg string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com"},
	})
	require.NoError(t, err)
	return hash
}

func TestClient_CurrentCommitAndResetHard(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	first := commitFile(t, repo, dir, "a.txt", "one", "first")
	second := commitFile(t, repo, dir, "a.txt", "two", "second")

	head, err := repo.Head()
	require.NoError(t, err)
	require.Equal(t, second, head.Hash())

	c := &Client{repo: repo, path: dir, branch: head.Name().Short()}

	current, err := c.CurrentCommit()
	require.NoError(t, err)
	require.Equal(t, second.String(), current.String())

	// reset_hard back to the first commit restores both HEAD and the file.
	firstID, err := domain.NewCommitId(first.String())
	require.NoError(t, err)
	require.NoError(t, c.ResetHard(firstID))

	head, err = repo.Head()
	require.NoError(t, err)
	require.Equal(t, first, head.Hash())
	require.True(t, head.Name().IsBranch(), "HEAD must remain a branch reference after reset_hard")

	content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "one", string(content))
}

func TestClient_FetchAndGetRemoteTip(t *testing.T) {
	remoteDir := t.TempDir()
	remoteRepo, err := git.PlainInit(remoteDir, false)
	require.NoError(t, err)
	commitFile(t, remoteRepo, remoteDir, "a.txt", "one", "first")

	localDir := t.TempDir()
	localRepo, err := git.PlainClone(localDir, false, &git.CloneOptions{URL: remoteDir})
	require.NoError(t, err)

	head, err := localRepo.Head()
	require.NoError(t, err)
	branch := head.Name().Short()

	c := &Client{repo: localRepo, path: localDir, branch: branch}

	tip, err := c.FetchAndGetRemoteTip(context.Background())
	require.NoError(t, err)
	require.Equal(t, head.Hash().String(), tip.String())

	second := commitFile(t, remoteRepo, remoteDir, "a.txt", "two", "second")

	tip, err = c.FetchAndGetRemoteTip(context.Background())
	require.NoError(t, err)
	require.Equal(t, second.String(), tip.String())
}
