// Package errs defines the sentinel errors shared across repositories and
// services. Handlers map them to HTTP statuses with errors.Is; workers decide
// retry behavior with them.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument marks malformed caller input. Terminal.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists marks an id or name collision. Terminal.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an ownership or state-machine violation.
	ErrForbidden = errors.New("forbidden")

	// ErrWalletChanged means another transaction committed on one of the
	// wallets between plan and commit. Retry immediately, bounded.
	ErrWalletChanged = errors.New("wallet changed, please try again")

	// ErrInsufficientFunds means the source wallet cannot cover the amount.
	// Retry only after a balance change.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrExternal marks a third-party (YouTube, push, email) failure. Logged
	// and non-fatal to batch jobs.
	ErrExternal = errors.New("external service error")
)

// InvalidArgumentf wraps ErrInvalidArgument with a formatted reason.
func InvalidArgumentf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidArgument}, args...)...)
}

// Forbiddenf wraps ErrForbidden with a formatted reason.
func Forbiddenf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrForbidden}, args...)...)
}
