package util

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWorkerError(t *testing.T) {
	baseErr := errors.New("allocation failed")
	workerErr := WrapWorkerError(3, baseErr)

	if workerErr == nil {
		t.Fatal("expected error, got nil")
	}

	expectedMsg := "worker 3: allocation failed"
	if workerErr.Error() != expectedMsg {
		t.Errorf("expected %q, got %q", expectedMsg, workerErr.Error())
	}

	// Test unwrapping
	if !errors.Is(workerErr, baseErr) {
		t.Error("expected worker error to wrap base error")
	}

	var we *WorkerError
	if !errors.As(workerErr, &we) {
		t.Fatal("errors.As should find WorkerError")
	}
	if we.Worker != 3 {
		t.Errorf("expected worker 3, got %d", we.Worker)
	}

	// Test nil wrapping
	nilErr := WrapWorkerError(0, nil)
	if nilErr != nil {
		t.Errorf("expected nil, got %v", nilErr)
	}
}

func TestMultiError(t *testing.T) {
	t.Run("empty multi-error", func(t *testing.T) {
		m := &MultiError{}
		if m.ErrorOrNil() != nil {
			t.Error("expected nil for empty multi-error")
		}
	})

	t.Run("single error", func(t *testing.T) {
		err := errors.New("test error")
		m := NewMultiError([]error{err})

		if m.Error() != "test error" {
			t.Errorf("expected %q, got %q", "test error", m.Error())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errors := []error{
			errors.New("error 1"),
			errors.New("error 2"),
			errors.New("error 3"),
		}
		m := NewMultiError(errors)

		msg := m.Error()
		if !strings.Contains(msg, "3 errors occurred") {
			t.Errorf("expected message to contain '3 errors occurred', got %q", msg)
		}
		if !strings.Contains(msg, "error 1") {
			t.Errorf("expected message to contain 'error 1', got %q", msg)
		}
	})

	t.Run("filtering nil errors", func(t *testing.T) {
		errors := []error{
			errors.New("error 1"),
			nil,
			errors.New("error 2"),
			nil,
		}
		m := NewMultiError(errors)

		if len(m.Errors) != 2 {
			t.Errorf("expected 2 errors, got %d", len(m.Errors))
		}
	})

	t.Run("add errors", func(t *testing.T) {
		m := &MultiError{}
		m.Add(errors.New("error 1"))
		m.Add(nil) // Should not be added
		m.Add(errors.New("error 2"))

		if len(m.Errors) != 2 {
			t.Errorf("expected 2 errors, got %d", len(m.Errors))
		}
	})

	t.Run("many errors truncation", func(t *testing.T) {
		m := &MultiError{}
		for i := 0; i < 20; i++ {
			m.Add(fmt.Errorf("error %d", i+1))
		}

		msg := m.Error()
		if !strings.Contains(msg, "and 10 more errors") {
			t.Errorf("expected truncation message, got %q", msg)
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		err := NewValidationError("threads", -2, "must be greater than 0")
		expectedMsg := `validation failed for field "threads" (value: -2): must be greater than 0`
		if err.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("without value", func(t *testing.T) {
		err := NewValidationError("threads", nil, "argument is required")
		expectedMsg := `validation failed for field "threads": argument is required`
		if err.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, err.Error())
		}
	})

	t.Run("matches invalid config", func(t *testing.T) {
		err := fmt.Errorf("parse flags: %w", NewValidationError("output", "xml", "unsupported format"))
		if !errors.Is(err, ErrInvalidConfig) {
			t.Error("expected validation error to match ErrInvalidConfig")
		}
		if !IsValidation(err) {
			t.Error("expected IsValidation to be true")
		}
	})
}

func TestIsCancelled(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "sentinel", err: ErrCancelled, want: true},
		{name: "context canceled", err: context.Canceled, want: true},
		{name: "wrapped context canceled", err: fmt.Errorf("run: %w", context.Canceled), want: true},
		{name: "other", err: ErrInvalidInput, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCancelled(tt.err); got != tt.want {
				t.Errorf("IsCancelled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: "",
		},
		{
			name:     "validation error",
			err:      NewValidationError("threads", 0, "must be greater than 0"),
			contains: "Invalid threads: must be greater than 0",
		},
		{
			name:     "cancelled error",
			err:      ErrCancelled,
			contains: "cancelled",
		},
		{
			name:     "context cancelled",
			err:      context.Canceled,
			contains: "cancelled",
		},
		{
			name:     "invalid input",
			err:      fmt.Errorf("line 3: %w", ErrInvalidInput),
			contains: "Malformed input",
		},
		{
			name:     "invalid config",
			err:      ErrInvalidConfig,
			contains: "Invalid configuration",
		},
		{
			name:     "unknown error",
			err:      errors.New("custom error message"),
			contains: "custom error message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := FriendlyError(tt.err)
			if tt.contains == "" {
				if msg != "" {
					t.Errorf("expected empty string, got %q", msg)
				}
				return
			}

			if !strings.Contains(msg, tt.contains) {
				t.Errorf("expected message to contain %q, got %q", tt.contains, msg)
			}
		})
	}
}

func TestCombineErrors(t *testing.T) {
	t.Run("all nil errors", func(t *testing.T) {
		err := CombineErrors(nil, nil, nil)
		if err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("mixed nil and non-nil errors", func(t *testing.T) {
		err := CombineErrors(
			errors.New("error 1"),
			nil,
			errors.New("error 2"),
		)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		msg := err.Error()
		if !strings.Contains(msg, "error 1") || !strings.Contains(msg, "error 2") {
			t.Errorf("expected combined error message, got %q", msg)
		}
	})
}

func TestWrapErrorf(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("wrap error", func(t *testing.T) {
		wrapped := WrapErrorf(baseErr, "failed to process file %q", "test.txt")
		expectedMsg := `failed to process file "test.txt": base error`
		if wrapped.Error() != expectedMsg {
			t.Errorf("expected %q, got %q", expectedMsg, wrapped.Error())
		}

		if !errors.Is(wrapped, baseErr) {
			t.Error("expected wrapped error to contain base error")
		}
	})

	t.Run("wrap nil error", func(t *testing.T) {
		wrapped := WrapErrorf(nil, "this should be nil")
		if wrapped != nil {
			t.Errorf("expected nil, got %v", wrapped)
		}
	})
}

func TestMultiErrorUnwrap(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	m := NewMultiError([]error{err1, err2, err3})

	// Check if MultiError implements Unwrap() []error
	unwrapped := m.Unwrap()
	if len(unwrapped) != 3 {
		t.Errorf("expected 3 unwrapped errors, got %d", len(unwrapped))
	}

	// Verify errors.Is works with MultiError
	if !errors.Is(m, err1) {
		t.Error("errors.Is should find err1 in MultiError")
	}
	if !errors.Is(m, err2) {
		t.Error("errors.Is should find err2 in MultiError")
	}
	if !errors.Is(m, err3) {
		t.Error("errors.Is should find err3 in MultiError")
	}
}
