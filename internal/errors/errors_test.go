package apperrors

import (
	"context"
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	err := NewConfigError("invalid offset range [%d, %d]", 9, 3)
	if err.Error() != "invalid offset range [9, 3]" {
		t.Errorf("Error() = %q", err.Error())
	}
	var cfgErr ConfigError
	if !errors.As(err, &cfgErr) {
		t.Error("errors.As should match ConfigError")
	}
}

func TestCalculationError(t *testing.T) {
	t.Parallel()
	cause := errors.New("bignum: overflow: 256 digits exceed capacity 255")
	err := CalculationError{Algorithm: "Fast Doubling", Offset: 1300, Cause: cause}

	want := "Fast Doubling at offset 1300: bignum: overflow: 256 digits exceed capacity 255"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestServerError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		err   error
		want  string
		cause error
	}{
		{"without cause", NewServerError("listen failed", nil), "listen failed", nil},
		{"with cause", NewServerError("shutdown", context.DeadlineExceeded), "shutdown: context deadline exceeded", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
			if tt.cause != nil && !errors.Is(tt.err, tt.cause) {
				t.Errorf("errors.Is should find %v", tt.cause)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	if got := NewValidationError("n", "must be a non-negative integer", "x").Error(); got != "validation error for 'n': must be a non-negative integer" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewValidationError("", "empty request", nil).Error(); got != "validation error: empty request" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()
	if WrapError(nil, "ignored") != nil {
		t.Error("WrapError(nil) should return nil")
	}
	err := WrapError(context.Canceled, "reading offset %d", 7)
	if err.Error() != "reading offset 7: context canceled" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !IsContextError(err) {
		t.Error("IsContextError should see through wrapping")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		err  error
		want bool
	}{
		{context.Canceled, true},
		{context.DeadlineExceeded, true},
		{errors.New("other"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := IsContextError(tt.err); got != tt.want {
			t.Errorf("IsContextError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestExitCodes(t *testing.T) {
	t.Parallel()
	codes := map[string]int{
		"ExitSuccess":       ExitSuccess,
		"ExitErrorGeneric":  ExitErrorGeneric,
		"ExitErrorTimeout":  ExitErrorTimeout,
		"ExitErrorMismatch": ExitErrorMismatch,
		"ExitErrorConfig":   ExitErrorConfig,
		"ExitErrorBusy":     ExitErrorBusy,
		"ExitErrorOverflow": ExitErrorOverflow,
		"ExitErrorCanceled": ExitErrorCanceled,
	}

	if ExitErrorCanceled != 130 {
		t.Errorf("ExitErrorCanceled should be 130 (SIGINT convention), got %d", ExitErrorCanceled)
	}

	seen := make(map[int]string)
	for name, code := range codes {
		if existing, ok := seen[code]; ok {
			t.Errorf("duplicate exit code %d: %s and %s", code, existing, name)
		}
		seen[code] = name
	}
}
