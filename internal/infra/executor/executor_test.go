package executor

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/pulld/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Skipping test on Windows")
	}

	t.Run("captures stdout and stderr lines", func(t *testing.T) {
		client := NewClient()
		script := domain.RenderJobScript([]string{"echo hello", "echo err >&2"})
		cmd := domain.NewJobCommand(script, "")
		var sink bytes.Buffer
		outcome, err := client.Run(context.Background(), cmd, &sink)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, outcome.Outcome)
		assert.Equal(t, 0, outcome.ExitCode)
		assert.Contains(t, sink.String(), "+ echo hello")
		assert.Contains(t, sink.String(), "hello")
		assert.Contains(t, sink.String(), "err")
	})

	t.Run("script runs in specified directory", func(t *testing.T) {
		dir := t.TempDir()
		client := NewClient()
		script := domain.RenderJobScript([]string{"pwd"})
		cmd := domain.NewJobCommand(script, dir)
		var sink bytes.Buffer
		_, err := client.Run(context.Background(), cmd, &sink)
		require.NoError(t, err)
		assert.Contains(t, strings.TrimSpace(sink.String()), dir)
	})

	t.Run("non-zero exit is reported as Failed with exit code", func(t *testing.T) {
		client := NewClient()
		script := domain.RenderJobScript([]string{"exit 7"})
		cmd := domain.NewJobCommand(script, "")
		var sink bytes.Buffer
		outcome, err := client.Run(context.Background(), cmd, &sink)
		require.Error(t, err)
		assert.Equal(t, domain.OutcomeFailed, outcome.Outcome)
		assert.Equal(t, 7, outcome.ExitCode)
	})

	t.Run("sh -e short-circuits the script on first failing command", func(t *testing.T) {
		client := NewClient()
		script := domain.RenderJobScript([]string{"false", "echo should-not-run"})
		cmd := domain.NewJobCommand(script, "")
		var sink bytes.Buffer
		outcome, err := client.Run(context.Background(), cmd, &sink)
		require.Error(t, err)
		assert.Equal(t, domain.OutcomeFailed, outcome.Outcome)
		assert.NotContains(t, sink.String(), "should-not-run")
	})

	t.Run("env exposes HOST_OS and HOST_ARCH", func(t *testing.T) {
		client := NewClient()
		script := domain.RenderJobScript([]string{"echo $HOST_OS-$HOST_ARCH"})
		cmd := domain.NewJobCommand(script, "", "HOST_OS="+runtime.GOOS, "HOST_ARCH="+runtime.GOARCH)
		var sink bytes.Buffer
		_, err := client.Run(context.Background(), cmd, &sink)
		require.NoError(t, err)
		assert.Contains(t, sink.String(), runtime.GOOS+"-"+runtime.GOARCH)
	})

	t.Run("cancel kills the child and reports Cancelled", func(t *testing.T) {
		client := NewClient()
		script := domain.RenderJobScript([]string{"sleep 60"})
		cmd := domain.NewJobCommand(script, "")
		var sink bytes.Buffer

		done := make(chan domain.JobOutcome, 1)
		go func() {
			outcome, _ := client.Run(context.Background(), cmd, &sink)
			done <- outcome
		}()

		time.Sleep(100 * time.Millisecond)
		client.Cancel()

		select {
		case outcome := <-done:
			assert.Equal(t, domain.OutcomeCancelled, outcome.Outcome)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for cancelled job to return")
		}
	})
}

func TestNewClient(t *testing.T) {
	assert.NotNil(t, NewClient())
}
