// Package tool runs the external command-line programs the pipeline delegates to.
//
// The package handles locating executables on PATH and spawning them as
// subprocesses, reporting the exit status back to the caller as a plain int.
//
// Key types:
//   - [Command]: an executable name plus its argument vector
//   - [Executor]: interface for running a [Command]
//   - [Locator]: resolves executable names on the search path
//
// For testing, use [MockExecutor] which implements [Executor] without spawning
// real processes.
package tool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Command is a single external program invocation.
//
// Commands are executed directly (no shell), so arguments never need quoting.
type Command struct {
	// Name is the executable name or path.
	Name string

	// Args are the arguments passed after Name.
	Args []string
}

// String renders the command as a shell-like line for logs and dry runs.
// Arguments containing whitespace or quotes are single-quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"$\\") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Executor runs external commands.
//
// Run blocks until the command exits and returns its exit code. The error is
// non-nil only when the process could not be run at all (missing binary,
// cancelled context); a process that ran and exited non-zero is reported
// through the exit code alone.
type Executor interface {
	Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) (int, error)
}

// DefaultExecutor implements [Executor] using os/exec.
type DefaultExecutor struct {
	// WaitDelay bounds how long Run waits for output copying after the
	// process is killed by context cancellation. Zero means 5 seconds.
	WaitDelay time.Duration
}

// NewExecutor creates a [DefaultExecutor].
func NewExecutor() *DefaultExecutor {
	return &DefaultExecutor{}
}

// Run starts cmd, wires its output streams, and waits for it to finish.
func (e *DefaultExecutor) Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) (int, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Stdout = stdout
	c.Stderr = stderr
	c.WaitDelay = e.WaitDelay
	if c.WaitDelay == 0 {
		c.WaitDelay = 5 * time.Second
	}

	slog.Debug("running command", "tool", cmd.Name, "cmd", cmd.String())
	start := time.Now()

	err := c.Run()
	if err == nil {
		slog.Debug("command finished", "tool", cmd.Name, "duration", time.Since(start))
		return 0, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return 1, fmt.Errorf("%s interrupted: %w", cmd.Name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal: there is no exit status to propagate.
			code = 1
		}
		slog.Debug("command failed", "tool", cmd.Name, "exit_code", code)
		return code, nil
	}

	return 1, fmt.Errorf("failed to run %s: %w", cmd.Name, err)
}

// Locator resolves an executable name to a path on the search path.
type Locator func(name string) (string, error)

// LookPath is the production [Locator].
var LookPath Locator = exec.LookPath

// Availability is the result of locating one executable.
type Availability struct {
	Name string
	Path string
	Err  error
}

// Found reports whether the executable was located.
func (a Availability) Found() bool {
	return a.Err == nil
}

// CheckAll locates every name and returns one [Availability] per name,
// in input order. It never stops early.
func (l Locator) CheckAll(names []string) []Availability {
	out := make([]Availability, len(names))
	for i, name := range names {
		path, err := l(name)
		out[i] = Availability{Name: name, Path: path, Err: err}
	}
	return out
}
