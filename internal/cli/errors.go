package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitCodeOK = 0
	// ExitCodeError is used when an agent could not be loaded.
	ExitCodeError = 1
	// ExitCodeUsage is used for bad flags, arguments or configuration.
	ExitCodeUsage = 2
)

// ExitError carries the exit code a command wants main to use.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCodeError
}
