package sink

import (
	"fmt"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
)

type EmptyResultError struct{}

func (e *EmptyResultError) Error() string { return "no records to write" }

func (e *EmptyResultError) Is(target error) bool { return target == apperr.ErrSink }

type MalformedResultError struct {
	Reason string
}

func (e *MalformedResultError) Error() string {
	return fmt.Sprintf("malformed result: %s", e.Reason)
}

func (e *MalformedResultError) Is(target error) bool { return target == apperr.ErrSink }
