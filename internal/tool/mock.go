package tool

import (
	"context"
	"fmt"
	"io"
)

// MockExecutor implements [Executor] for testing.
//
// Every call is recorded in Commands. The exit code comes from ExitCodes keyed
// by command name; Handler, when set, runs first and can write output or create
// the files a real tool would produce.
//
//	mock := &MockExecutor{ExitCodes: map[string]int{"spades.py": 2}}
type MockExecutor struct {
	// Commands records all executed commands in order.
	Commands []Command

	// ExitCodes maps command names to the exit code to return. Missing names exit 0.
	ExitCodes map[string]int

	// Errors maps command names to a start failure to return.
	Errors map[string]error

	// Handler simulates the tool's side effects.
	Handler func(cmd Command, stdout, stderr io.Writer) error
}

// Run records cmd and returns the configured result.
func (m *MockExecutor) Run(ctx context.Context, cmd Command, stdout, stderr io.Writer) (int, error) {
	m.Commands = append(m.Commands, cmd)

	if err := m.Errors[cmd.Name]; err != nil {
		return 1, err
	}
	if m.Handler != nil {
		if err := m.Handler(cmd, stdout, stderr); err != nil {
			return 1, fmt.Errorf("mock handler for %s: %w", cmd.Name, err)
		}
	}
	return m.ExitCodes[cmd.Name], nil
}

// Names returns the executable names of all recorded commands.
func (m *MockExecutor) Names() []string {
	names := make([]string, len(m.Commands))
	for i, c := range m.Commands {
		names[i] = c.Name
	}
	return names
}

// StaticLocator returns a [Locator] that finds exactly the given names,
// reporting them under /usr/bin.
func StaticLocator(present ...string) Locator {
	set := make(map[string]bool, len(present))
	for _, p := range present {
		set[p] = true
	}
	return func(name string) (string, error) {
		if set[name] {
			return "/usr/bin/" + name, nil
		}
		return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
}
