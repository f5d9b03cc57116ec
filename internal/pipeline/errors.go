package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind classifies terminal pipeline failures so callers can render a
// meaningful notification without parsing messages.
type ErrorKind int

const (
	// KindInvalidInput: zero-size image, malformed parameters. The pipeline
	// never starts and no stage events are emitted.
	KindInvalidInput ErrorKind = iota

	// KindResourceExceeded: the image is larger than the engine's pixel
	// policy allows. Rejected before quantization begins.
	KindResourceExceeded

	// KindTimeout: the wall-clock budget elapsed or the caller canceled.
	// No partial result is returned.
	KindTimeout

	// KindInternal: an invariant check failed mid-pipeline. Fatal for this
	// request only; the next request starts from a clean slate.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindResourceExceeded:
		return "resource_exceeded"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is the single terminal error payload of a pipeline run.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from err, defaulting to KindInternal for
// anything that escaped classification.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

func errInvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func errResourceExceeded(format string, args ...any) *Error {
	return &Error{Kind: KindResourceExceeded, Message: fmt.Sprintf(format, args...)}
}

func errTimeout(message string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: message, Err: err}
}

func errInternal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
