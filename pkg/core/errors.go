package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. User-facing errors are recovered where they occur and shown
// inline; ErrUninitializedKey is a programming defect.
var (
	// ErrEmptyInput is returned for a blank query or blank credentials.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidFormat is returned when a credential blob is not a valid key document.
	ErrInvalidFormat = errors.New("invalid credential format")

	// ErrInvalidCredentials is returned when the warehouse rejects a key.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEngine matches every EngineError.
	ErrEngine = errors.New("query engine error")

	// ErrNotConnected is returned when an engine call is needed but no key was saved.
	ErrNotConnected = errors.New("not connected: save a warehouse key first")

	// ErrFieldNotFound is returned when a chart axis names a column absent from the result.
	ErrFieldNotFound = errors.New("field not found")

	// ErrEmptyTable is returned when a chart is requested for a result with no rows.
	ErrEmptyTable = errors.New("empty table")

	// ErrUninitializedKey is returned when a session slot is read before its default was registered.
	ErrUninitializedKey = errors.New("uninitialized session key")
)

// EngineError wraps a warehouse failure. The message is passed through
// verbatim; Context labels what the user was doing.
type EngineError struct {
	Context string
	Err     error
}

// NewEngineError wraps err with a context label. A nil err yields nil.
func NewEngineError(context string, err error) error {
	if err == nil {
		return nil
	}
	return &EngineError{Context: context, Err: err}
}

func (e *EngineError) Error() string {
	if e.Context == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

// Unwrap returns the underlying engine error.
func (e *EngineError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrEngine) match every EngineError.
func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// Message returns the engine's own message without the context label.
func (e *EngineError) Message() string { return e.Err.Error() }

// FieldNotFoundError names the missing field and the columns that do exist.
type FieldNotFoundError struct {
	Field     string
	Available []string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field %q not found; columns: %s", e.Field, strings.Join(e.Available, ", "))
}

// Is makes errors.Is(err, ErrFieldNotFound) match.
func (e *FieldNotFoundError) Is(target error) bool { return target == ErrFieldNotFound }

// UninitializedKeyError names the session slot that was read without a default.
type UninitializedKeyError struct {
	Key string
}

func (e *UninitializedKeyError) Error() string {
	return fmt.Sprintf("session key %q read before a default was registered", e.Key)
}

// Is makes errors.Is(err, ErrUninitializedKey) match.
func (e *UninitializedKeyError) Is(target error) bool { return target == ErrUninitializedKey }
