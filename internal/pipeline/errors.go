package pipeline

import (
	"errors"
	"fmt"
)

// ErrToolMissing is wrapped by the check-tools failure.
var ErrToolMissing = errors.New("required tool not found")

// StageError is a failed stage, carrying the tool's exit code when there is one.
type StageError struct {
	Stage Stage

	// Tool is the display name of the failing tool, empty for driver-side failures.
	Tool string

	// ExitCode is the tool's exit status, or 1 for driver-side failures.
	ExitCode int

	Err error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Detail())
}

// Detail is the message written after "Error:" in the run log.
func (e *StageError) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ExitCode maps a run error to a process exit status: 0 for nil, the tool's
// exit code for stage failures, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var se *StageError
	if errors.As(err, &se) && se.ExitCode > 0 {
		return se.ExitCode
	}
	return 1
}
