package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/microbench/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid expression", inner)

	if err.Error() != "invalid expression: parse failed" {
		t.Errorf("expected 'invalid expression: parse failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("empty parentheses")

	wrapped := fmt.Errorf("failed to parse: %w", original)
	doubleWrapped := fmt.Errorf("storage error: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "empty parentheses" {
		t.Errorf("expected 'empty parentheses', got %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestValidationError_IsConfig(t *testing.T) {
	err := fmt.Errorf("load: %w", apperr.NewValidation("benchmarks list missing"))

	if !errors.Is(err, apperr.ErrConfig) {
		t.Fatal("expected validation error to be a configuration error")
	}
	if errors.Is(err, apperr.ErrExecution) {
		t.Fatal("validation error must not be an execution error")
	}
}

func TestExecution(t *testing.T) {
	if apperr.Execution(nil) != nil {
		t.Fatal("expected nil for nil input")
	}

	inner := fmt.Errorf("kernel panicked")
	err := apperr.Execution(inner)

	if !errors.Is(err, apperr.ErrExecution) {
		t.Error("expected execution category")
	}
	if !errors.Is(err, inner) {
		t.Error("expected inner error in chain")
	}
	if err.Error() != "kernel panicked" {
		t.Errorf("expected message to pass through, got %q", err.Error())
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config", apperr.NewValidation("bad"), 2},
		{"resolution", fmt.Errorf("x: %w", apperr.ErrResolution), 3},
		{"execution", apperr.Execution(fmt.Errorf("boom")), 4},
		{"sink", fmt.Errorf("x: %w", apperr.ErrSink), 5},
		{"other", fmt.Errorf("plain"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperr.ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
