package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"

	"github.com/3leaps/bwing/pkg/match"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %v (exit code %d)", e.Message, e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitError creates an error that will cause the CLI to exit with the given code.
func exitError(code int, message string, err error) error {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
// Errors that did not come from a command (flag parsing, missing
// required flags) are argument errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return foundry.ExitInvalidArgument
}

// operationError picks the exit code for a failed bucket operation.
func operationError(ctx context.Context, message string, err error) error {
	switch {
	case errors.Is(err, match.ErrInvalidRegex):
		return exitError(foundry.ExitInvalidArgument, "Invalid --regex value", err)
	case ctx.Err() != nil:
		return exitError(foundry.ExitSignalInt, message+" cancelled", ctx.Err())
	default:
		return exitError(foundry.ExitExternalServiceUnavailable, message, err)
	}
}

var errNegativeRate = errors.New("max-rps must be >= 0")
