// Command fibdrv reads exact Fibonacci numbers through a single-session
// device, samples its latency, cross-checks its engines or serves it over
// HTTP.
package main

import (
	"context"
	"os"

	"github.com/agbru/fibdrv/internal/app"
	"github.com/agbru/fibdrv/internal/config"
	apperrors "github.com/agbru/fibdrv/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if config.IsHelp(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
