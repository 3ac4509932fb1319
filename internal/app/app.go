package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/fibdrv/internal/cli"
	"github.com/agbru/fibdrv/internal/config"
	"github.com/agbru/fibdrv/internal/device"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/logging"
	"github.com/agbru/fibdrv/internal/orchestration"
	"github.com/agbru/fibdrv/internal/server"
	"github.com/agbru/fibdrv/internal/stats"
	"github.com/agbru/fibdrv/internal/telemetry"
	"github.com/agbru/fibdrv/internal/ui"
)

// Application represents the fibdrv application instance.
// It encapsulates the configuration and the device, and runs one of the
// modes (read, stats, verify, serve, repl).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the Fibonacci calculator implementations.
	Factory fibonacci.CalculatorFactory
	// Device is the session gate every mode goes through.
	Device *device.Device
	// Logger receives diagnostics. It writes to ErrWriter.
	Logger logging.Logger
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// In is read by the REPL. Nil means os.Stdin.
	In io.Reader

	programName string
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or
// validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	// args[0] is program name, args[1:] are the actual arguments
	programName := "fibdrv"
	var cmdArgs []string
	if len(args) > 0 {
		programName = filepath.Base(args[0])
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg, errWriter)
	factory := fibonacci.GlobalFactory()

	return &Application{
		Config:      cfg,
		Factory:     factory,
		Device:      newDevice(cfg, factory, logger),
		Logger:      logger,
		ErrWriter:   errWriter,
		programName: programName,
	}, nil
}

// newLogger writes JSON lines when the output is JSON and console lines
// otherwise. The global zerolog level also gates the calculator debug lines.
func newLogger(cfg config.AppConfig, w io.Writer) logging.Logger {
	zerolog.SetGlobalLevel(cfg.Level())
	if cfg.JSONOutput {
		return logging.NewLogger(w, "fibdrv", cfg.Level())
	}
	return logging.NewConsoleLogger(w, "fibdrv", cfg.Level())
}

func newDevice(cfg config.AppConfig, factory fibonacci.CalculatorFactory, logger logging.Logger) *device.Device {
	opts := []device.Option{
		device.WithName(cfg.Device),
		device.WithDigitCapacity(cfg.Capacity),
		device.WithMaxOffset(cfg.MaxOffset),
		device.WithResponseSize(cfg.ResponseSize),
		device.WithLogger(logger.With(logging.String("component", "device"))),
	}
	if calc, err := factory.Get(fibonacci.AlgorithmDoubling); err == nil {
		opts = append(opts, device.WithEngine(calc))
	}
	if calc, err := factory.Get(fibonacci.AlgorithmIterative); err == nil {
		opts = append(opts, device.WithMeasureEngines(calc))
	}
	return device.New(opts...)
}

// Run executes the application based on the configured mode.
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	// Initialize CLI theme (respects --no-color flag and NO_COLOR env var)
	ui.InitTheme(a.Config.NoColor)

	shutdown, err := telemetry.Setup(ctx, a.ErrWriter, telemetry.Config{
		Enabled: a.Config.Trace,
		Version: Version,
	})
	if err != nil {
		a.Logger.Error("tracing disabled", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			a.Logger.Error("flushing traces", err)
		}
	}()

	switch a.Config.Mode {
	case config.ModeServe:
		return a.runServer(ctx)
	case config.ModeREPL:
		return a.runREPL(ctx, out)
	}

	ctx, cancel := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancel.Cleanup()

	switch a.Config.Mode {
	case config.ModeStats:
		return a.runStats(ctx, out)
	case config.ModeVerify:
		return a.runVerify(ctx, out)
	default:
		return a.runRead(ctx, out)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	values := map[string][]string{
		"mode":       config.Modes,
		"log-level":  {"debug", "info", "warn", "error"},
		"completion": cli.CompletionShells,
	}
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.programName, config.FlagSet(a.programName), values); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer serves the device over HTTP until a termination signal.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stop := SetupSignals(ctx)
	defer stop()

	srv := server.NewServer(a.Device, a.Config,
		server.WithLogger(a.Logger.With(logging.String("component", "server"))))
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive REPL mode.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	ctx, stop := SetupSignals(ctx)
	defer stop()

	repl := cli.NewREPL(a.Device, cli.REPLConfig{Timeout: a.Config.Timeout})
	repl.SetOutput(out)
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.Start(ctx)
	return apperrors.ExitSuccess
}

// runRead walks [From, To] through one device session and prints one
// sequence line per offset.
func (a *Application) runRead(ctx context.Context, out io.Writer) int {
	start := time.Now()
	results, err := orchestration.ReadRange(ctx, a.Device, a.Config.From, a.Config.To)
	if err != nil {
		return apperrors.HandleError(err, time.Since(start), a.ErrWriter, cli.CLIColorProvider{})
	}

	outputCfg := cli.OutputConfig{
		Device:     a.Device.Name(),
		OutputFile: a.Config.Output,
		Quiet:      a.Config.Quiet,
		JSON:       a.Config.JSONOutput,
		Details:    a.Config.From == a.Config.To,
	}
	if err := cli.DisplayResults(out, results, outputCfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving results: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if err := orchestration.FirstError(results); err != nil {
		return apperrors.HandleError(err, 0, a.ErrWriter, cli.CLIColorProvider{})
	}
	return apperrors.ExitSuccess
}

// runStats samples the device and writes the plot input file.
func (a *Application) runStats(ctx context.Context, out io.Writer) int {
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	start := time.Now()
	rows, err := orchestration.RunStats(ctx, a.Device, a.Config, progressOut)
	if err != nil {
		return apperrors.HandleError(err, time.Since(start), a.ErrWriter, cli.CLIColorProvider{})
	}

	if a.Config.JSONOutput {
		return printJSON(out, rows)
	}

	path := a.Config.Output
	if path == "" {
		path = config.DefaultPlotFile
	}
	if err := writePlotFile(path, rows); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving statistics: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if !a.Config.Quiet {
		fmt.Fprintf(out, "%s✓ Statistics for %d offsets saved to: %s%s%s\n",
			cli.ColorGreen(), len(rows), cli.ColorCyan(), path, cli.ColorReset())
	}
	return apperrors.ExitSuccess
}

func writePlotFile(path string, rows []stats.Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := stats.WritePlot(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// runVerify cross-checks every registered engine over [From, To].
func (a *Application) runVerify(ctx context.Context, out io.Writer) int {
	all := a.Factory.GetAll()
	calculators := make([]fibonacci.Calculator, 0, len(all))
	for _, name := range a.Factory.List() {
		calculators = append(calculators, all[name])
	}

	if !a.Config.Quiet && !a.Config.JSONOutput {
		fmt.Fprintf(out, "Verifying %d engines over offsets [%d, %d] with capacity %d.\n",
			len(calculators), a.Config.From, a.Config.To, a.Config.Capacity)
	}
	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	results := orchestration.ExecuteCalculations(ctx, calculators, a.Config, progressOut)
	if a.Config.JSONOutput {
		code := orchestration.AnalyzeComparisonResults(results, a.Config, io.Discard)
		if printJSONResults(results, out) != apperrors.ExitSuccess {
			return apperrors.ExitErrorGeneric
		}
		return code
	}
	summaryOut := out
	if a.Config.Quiet {
		summaryOut = io.Discard
	}
	return orchestration.AnalyzeComparisonResults(results, a.Config, summaryOut)
}

// jsonResult represents one engine of a verification run in JSON format.
type jsonResult struct {
	Algorithm string `json:"algorithm"`
	Duration  string `json:"duration"`
	Offsets   int    `json:"offsets"`
	Last      string `json:"last,omitempty"`
	Error     string `json:"error,omitempty"`
}

// printJSONResults formats the verification results as a JSON array.
func printJSONResults(results []orchestration.CalculationResult, out io.Writer) int {
	output := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{
			Algorithm: res.Name,
			Duration:  res.Duration.String(),
			Offsets:   len(res.Values),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else if len(res.Values) > 0 {
			jr.Last = res.Values[len(res.Values)-1]
		}
		output[i] = jr
	}
	return printJSON(out, output)
}

func printJSON(out io.Writer, v any) int {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
