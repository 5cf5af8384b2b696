package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidationFailed = "COMMAND_VALIDATION_FAILED"
	TextCodeContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	TextCodeContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	TextCodeContextError     = "COMMAND_CONTEXT_ERROR"
	TextCodeExecutionFailed  = "COMMAND_EXECUTION_FAILED"
)

// WrapValidationError tags err as a validation failure. Errors already
// wrapped by go-errors keep their category.
func WrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(TextCodeValidationFailed)
}

// WrapContextError tags cancellation and deadline errors.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(TextCodeContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(TextCodeContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(TextCodeContextError)
	}
}

// WrapExecuteError tags a failure returned by the command function.
func WrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(TextCodeExecutionFailed)
}
