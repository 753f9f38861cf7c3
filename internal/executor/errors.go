// internal/executor/errors.go
package executor

import (
	"context"
	"errors"
	"fmt"
)

// ErrorCode is the machine-readable failure class attached to a Result.
type ErrorCode string

const (
	// -- Input Errors --
	ErrCodeInvalidParameters ErrorCode = "INVALID_PARAMETERS"
	ErrCodeUnknownAction     ErrorCode = "UNKNOWN_ACTION"

	// -- Execution Errors --
	ErrCodeInputSynthesis ErrorCode = "INPUT_SYNTHESIS_FAILURE"
	ErrCodeLaunchFailure  ErrorCode = "LAUNCH_FAILURE"
	ErrCodeRecordFailure  ErrorCode = "RECORD_FAILURE"
	ErrCodeCanceled       ErrorCode = "CANCELED"

	// -- Internal System Errors --
	ErrCodeExecutorPanic ErrorCode = "EXECUTOR_PANIC"
)

// ErrDeviceBusy is returned when a batch is submitted while another is still
// running on the same dispatcher.
var ErrDeviceBusy = errors.New("executor: device busy with another batch")

// ActionError is a handler failure tagged with its code.
type ActionError struct {
	Code ErrorCode
	Err  error
}

func (e *ActionError) Error() string { return fmt.Sprintf("%s: %v", e.Code, e.Err) }

func (e *ActionError) Unwrap() error { return e.Err }

func coded(code ErrorCode, err error) error {
	if err == nil {
		return nil
	}
	return &ActionError{Code: code, Err: err}
}

// classify picks the code for a handler error. Cancellation of the batch
// context wins over whatever the handler reported.
func classify(ctx context.Context, err error) ErrorCode {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ErrCodeCanceled
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeInputSynthesis
}
