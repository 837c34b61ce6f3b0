package cli

import (
	"errors"
	"fmt"

	"sra2mito/internal/pipeline"
)

// ExitError represents a command failure with a specific process exit code.
//
// Cobra RunE functions return an ExitError instead of calling os.Exit, so a
// failing run can be asserted on in tests without terminating the process.
// The error propagates up to [RunWithConfig], where [IsExitError] extracts the
// code for [ExecuteResult]. Only [Execute] calls os.Exit.
//
// Err is the failure that produced the code, when there is one. By the time an
// ExitError is returned the failure has already been written to the console
// and the run log, so [RunWithConfig] does not print it again.
type ExitError struct {
	// Code is the exit code returned to the shell.
	// Convention: 0 = success, 1 = usage or environment error, any other value
	// is passed through from the failing tool.
	Code int

	// Err is the underlying failure, usually a [*pipeline.StageError]. May be nil.
	Err error
}

// Error implements the error interface. The message starts with "exit status N",
// matching the os/exec ExitError format, followed by the cause when known.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exit status %d: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying failure so errors.Is and errors.As can
// reach a [*pipeline.StageError] or a sentinel such as [pipeline.ErrToolMissing].
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an [ExitError] with the given exit code and no cause.
//
// Use this in Cobra RunE functions when a command fails for a reason that has
// no pipeline error behind it:
//
//	if !allFound {
//	    cmd.SilenceUsage = true
//	    return NewExitError(1)
//	}
//
// Failures coming out of a pipeline run should go through exitFor instead, so
// the tool's exit code and the cause are preserved.
func NewExitError(code int) *ExitError {
	return &ExitError{Code: code}
}

// exitFor maps a run failure to the error a command returns. Usage errors pass
// through untouched so cobra prints usage; anything else becomes an
// [ExitError] holding the failing tool's exit code.
func exitFor(err error) error {
	if err == nil || errors.Is(err, pipeline.ErrUsage) {
		return err
	}
	return &ExitError{Code: pipeline.ExitCode(err), Err: err}
}

// IsExitError checks whether err is, or wraps, an [ExitError] and extracts its
// exit code.
//
// Returns (code, true) when an *ExitError is found in err's chain. Returns
// (0, false) for nil and for any other error, which callers treat as a
// general failure with exit code 1.
//
// Typical usage in [RunWithConfig]:
//
//	if err := rootCmd.ExecuteContext(ctx); err != nil {
//	    if code, ok := IsExitError(err); ok {
//	        return ExecuteResult{ExitCode: code, Err: err}
//	    }
//	    return ExecuteResult{ExitCode: 1, Err: err} // usage or config error
//	}
func IsExitError(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
