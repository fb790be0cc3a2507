package registry

import (
	"fmt"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
)

type UnknownBenchmarkError struct {
	Name string
}

func (e *UnknownBenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %q is not defined in the registry", e.Name)
}

func (e *UnknownBenchmarkError) Is(target error) bool { return target == apperr.ErrResolution }

type ResolutionError struct {
	Location string
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("unable to load %s: %v", e.Location, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func (e *ResolutionError) Is(target error) bool { return target == apperr.ErrResolution }

// MissingMetricsFunctionError means a registry entry was authored without its
// companion metrics function.
type MissingMetricsFunctionError struct {
	Name     string
	Function string
}

func (e *MissingMetricsFunctionError) Error() string {
	return fmt.Sprintf("metrics function %q for benchmark %q not found", e.Function, e.Name)
}

func (e *MissingMetricsFunctionError) Is(target error) bool { return target == apperr.ErrResolution }
