package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/fibdrv/internal/bignum"
	"github.com/agbru/fibdrv/internal/device"
)

// ColorProvider defines the interface for obtaining terminal color codes.
// This abstraction breaks the import cycle with cli.
type ColorProvider interface {
	Yellow() string
	Reset() string
}

// DefaultColorProvider provides no color codes (for non-terminal output).
type DefaultColorProvider struct{}

func (d DefaultColorProvider) Yellow() string { return "" }
func (d DefaultColorProvider) Reset() string  { return "" }

// HandleError prints a status line for a failed run and returns the exit
// code matching the failure.
//
// Parameters:
//   - err: The error that occurred.
//   - duration: How long the run took before it failed.
//   - out: The io.Writer to which the error message will be written.
//   - colors: Provider for terminal color codes (can be nil for no colors).
//
// Returns:
//   - int: The appropriate exit code for the error type.
func HandleError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}

	if colors == nil {
		colors = DefaultColorProvider{}
	}

	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}

	var cfgErr ConfigError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(out, "Status: Failure (Timeout). The execution limit was reached%s.\n", msgSuffix)
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
		return ExitErrorCanceled
	case errors.Is(err, device.ErrBusy):
		fmt.Fprintf(out, "Status: Failure (Busy). The device is held by another session.\n")
		return ExitErrorBusy
	case bignum.IsOverflow(err):
		fmt.Fprintf(out, "Status: Failure (Overflow). %v\n", err)
		return ExitErrorOverflow
	case errors.As(err, &cfgErr):
		fmt.Fprintf(out, "Configuration error: %v\n", err)
		return ExitErrorConfig
	}
	fmt.Fprintf(out, "Status: Failure. An unexpected error occurred: %v\n", err)
	return ExitErrorGeneric
}
