package domain

import (
	"fmt"
	"strings"
)

// ExecCommand represents an external command to be executed by the
// Subprocess Executor. Fields are ordered to minimize memory padding.
type ExecCommand struct {
	Program string   // The command to execute, e.g. "sh".
	Dir     string   // Working directory (empty means current directory).
	Args    []string // Command arguments.
	Env     []string // Extra "KEY=VALUE" entries appended to the inherited environment.
}

// RenderJobScript renders a job's ordered shell commands into a single
// script suitable for "sh -e -c <script>". Each command is preceded by an
// echo of "+ <line>" per command line, shell-quoted, mirroring `set -x`
// without the shell's own quoting artifacts.
func RenderJobScript(commands []string) string {
	var b strings.Builder
	for _, cmd := range commands {
		lines := strings.Split(cmd, "\n")
		echoLines := make([]string, len(lines))
		for i, l := range lines {
			echoLines[i] = "+ " + l
		}
		echo := strings.Join(echoLines, "\n")
		fmt.Fprintf(&b, "echo %s\n%s\n", shellQuote(echo), cmd)
	}
	return b.String()
}

// shellQuote wraps s in single quotes, escaping any embedded single quote
// the POSIX-portable way: close the quote, emit an escaped quote, reopen.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// NewJobCommand builds the ExecCommand that runs a job's rendered script in
// dir, with the given extra environment entries appended.
func NewJobCommand(script, dir string, extraEnv ...string) *ExecCommand {
	return &ExecCommand{
		Program: "sh",
		Args:    []string{"-e", "-c", script},
		Dir:     dir,
		Env:     extraEnv,
	}
}
