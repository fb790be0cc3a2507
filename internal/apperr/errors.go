package apperr

import "errors"

// Error categories. Typed errors across the harness report one of these
// through an Is method so callers can branch with errors.Is.
var (
	ErrConfig     = errors.New("configuration error")
	ErrResolution = errors.New("resolution error")
	ErrExecution  = errors.New("execution error")
	ErrSink       = errors.New("sink error")
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports every validation error as a configuration error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConfig
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// Execution wraps an error raised inside a benchmark or metrics function.
func Execution(err error) error {
	if err == nil {
		return nil
	}
	return &executionError{err: err}
}

type executionError struct {
	err error
}

func (e *executionError) Error() string        { return e.err.Error() }
func (e *executionError) Unwrap() error        { return e.err }
func (e *executionError) Is(target error) bool { return target == ErrExecution }

// ExitCode maps an error category to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfig):
		return 2
	case errors.Is(err, ErrResolution):
		return 3
	case errors.Is(err, ErrExecution):
		return 4
	case errors.Is(err, ErrSink):
		return 5
	default:
		return 1
	}
}
