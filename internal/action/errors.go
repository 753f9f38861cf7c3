package action

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAmbiguousAction means an entry populated more than one kind.
	ErrAmbiguousAction = errors.New("ambiguous action: more than one action kind populated")
	// ErrEmptyAction means an entry populated no recognizable kind.
	ErrEmptyAction = errors.New("empty action: no action kind populated")
	// ErrInvalidParameters means a kind's parameters failed validation.
	ErrInvalidParameters = errors.New("invalid action parameters")
	// ErrBatchTooLarge means a batch exceeded MaxBatchSize entries.
	ErrBatchTooLarge = errors.New("action batch exceeds maximum size")
	// ErrMalformedBatch means the payload was not a list of entries.
	ErrMalformedBatch = errors.New("malformed action batch")
)

// AmbiguousActionError names the kinds found in an ambiguous entry.
type AmbiguousActionError struct {
	// Keys are the entry keys as written, which may include legacy aliases.
	Keys []string
}

func (e *AmbiguousActionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAmbiguousAction.Error(), strings.Join(e.Keys, ", "))
}

func (e *AmbiguousActionError) Unwrap() error { return ErrAmbiguousAction }

// InvalidParametersError reports which field of which kind failed.
type InvalidParametersError struct {
	Kind   Kind
	Field  string
	Reason string
}

func (e *InvalidParametersError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid parameters for %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("invalid parameters for %s: field %q: %s", e.Kind, e.Field, e.Reason)
}

func (e *InvalidParametersError) Unwrap() error { return ErrInvalidParameters }

func invalidParams(kind Kind, field, format string, args ...interface{}) *InvalidParametersError {
	return &InvalidParametersError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// EntryError ties a decode failure to its position in the batch.
type EntryError struct {
	Index int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("action[%d]: %v", e.Index, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
