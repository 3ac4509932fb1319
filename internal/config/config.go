// Package config provides the configuration management for the fibdrv
// application. Settings come from command-line flags, FIBDRV_* environment
// variables and an optional YAML file, in that order of precedence, on top
// of built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/fibdrv/internal/device"
	apperrors "github.com/agbru/fibdrv/internal/errors"
	"github.com/agbru/fibdrv/internal/fibonacci"
	"github.com/agbru/fibdrv/internal/stats"
)

const (
	// EnvPrefix is the prefix for all environment variables used by fibdrv.
	EnvPrefix = "FIBDRV_"
)

// Run modes.
const (
	ModeRead   = "read"
	ModeStats  = "stats"
	ModeVerify = "verify"
	ModeServe  = "serve"
	ModeREPL   = "repl"
)

// Modes lists the valid values of AppConfig.Mode.
var Modes = []string{ModeRead, ModeStats, ModeVerify, ModeServe, ModeREPL}

// Default configuration values.
const (
	DefaultMode     = ModeRead
	DefaultFrom     = 0
	DefaultTo       = 100
	DefaultTimeout  = 5 * time.Minute
	DefaultPort     = "8080"
	DefaultCache    = 128
	DefaultPlotFile = "plot_input_statistic"
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Mode selects what the program does: read, stats, verify, serve or repl.
	Mode string
	// From and To bound the offsets visited by read, stats and verify.
	From, To int64
	// Samples is the number of measurements per offset and mode in stats mode.
	Samples int
	// Capacity is the digit capacity of the decimal engine.
	Capacity int
	// MaxOffset is the largest cursor value of the device.
	MaxOffset int64
	// ResponseSize is the size of the device read buffer.
	ResponseSize int
	// Device is the path the device is reported under.
	Device string
	// Timeout bounds the whole run. Computations in flight finish first.
	Timeout time.Duration
	// Port specifies the port to listen on in serve mode.
	Port string
	// CacheSize is the number of responses the server keeps. 0 disables it.
	CacheSize int
	// Output is the file results are written to. In stats mode it defaults
	// to DefaultPlotFile; elsewhere an empty value means standard output.
	Output string
	// CPU pins the stats sampler to one CPU when non-negative.
	CPU int
	// Quiet suppresses banners and progress.
	Quiet bool
	// JSONOutput prints results as JSON.
	JSONOutput bool
	// NoColor disables colored output. NO_COLOR is honored as well.
	NoColor bool
	// Trace enables the stdout OpenTelemetry exporter.
	Trace bool
	// LogLevel is the zerolog level name.
	LogLevel string
	// ConfigFile is the optional YAML file loaded below env and flags.
	ConfigFile string
	// Completion names a shell to print a completion script for.
	Completion string
}

// ToCalculationOptions converts the application configuration into
// fibonacci.Options for use by the calculators.
func (c AppConfig) ToCalculationOptions() fibonacci.Options {
	return fibonacci.Options{DigitCapacity: c.Capacity}
}

// Validate checks the semantic consistency of the configuration parameters.
// It returns a ConfigError describing the first problem found.
func (c AppConfig) Validate() error {
	if !contains(Modes, c.Mode) {
		return apperrors.NewConfigError("unrecognized mode: '%s'. Valid modes are: [%s]", c.Mode, strings.Join(Modes, ", "))
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.MaxOffset <= 0 {
		return apperrors.NewConfigError("max offset must be strictly positive: %d", c.MaxOffset)
	}
	if c.From < 0 || c.To < c.From {
		return apperrors.NewConfigError("invalid offset range [%d, %d]", c.From, c.To)
	}
	if c.To > c.MaxOffset {
		return apperrors.NewConfigError("offset %d is beyond the device maximum %d", c.To, c.MaxOffset)
	}
	if c.Capacity <= 0 {
		return apperrors.NewConfigError("digit capacity must be strictly positive: %d", c.Capacity)
	}
	if c.ResponseSize <= 0 {
		return apperrors.NewConfigError("response size must be strictly positive: %d", c.ResponseSize)
	}
	if c.Samples <= 0 {
		return apperrors.NewConfigError("samples must be strictly positive: %d", c.Samples)
	}
	if c.CacheSize < 0 {
		return apperrors.NewConfigError("cache size cannot be negative: %d", c.CacheSize)
	}
	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell for completion: '%s'", c.Completion)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("invalid log level '%s'", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments, merges the environment and
// the optional configuration file, and validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: flag.ErrHelp for -h, a ConfigError for invalid settings.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	config := AppConfig{}
	fs := newFlagSet(programName, &config)
	fs.SetOutput(errorWriter)

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		fc, err := loadFile(config.ConfigFile)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, apperrors.NewConfigError("%v", err)
		}
		fc.apply(&config, fs)
	}

	applyEnvOverrides(&config, fs)

	config.Mode = strings.ToLower(config.Mode)
	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}

// Level returns the zerolog level named by LogLevel, or info when the name
// is invalid.
func (c AppConfig) Level() zerolog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func parseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(name))
}

// newFlagSet declares every flag of the program, bound to config.
func newFlagSet(programName string, config *AppConfig) *flag.FlagSet {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.StringVar(&config.Mode, "mode", DefaultMode, fmt.Sprintf("Run mode, one of [%s].", strings.Join(Modes, ", ")))
	fs.Int64Var(&config.From, "from", DefaultFrom, "First offset to visit.")
	fs.Int64Var(&config.To, "to", DefaultTo, "Last offset to visit (inclusive).")
	fs.IntVar(&config.Samples, "samples", stats.DefaultSamples, "Measurements per offset and mode in stats mode.")
	fs.IntVar(&config.Capacity, "capacity", fibonacci.DefaultDigitCapacity, "Digit capacity of the decimal engine.")
	fs.Int64Var(&config.MaxOffset, "max-offset", device.DefaultMaxOffset, "Largest cursor value of the device.")
	fs.IntVar(&config.ResponseSize, "response-size", device.DefaultResponseSize, "Size of the device read buffer in bytes.")
	fs.StringVar(&config.Device, "device", device.DefaultName, "Name the device is reported under.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time of the run.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in serve mode.")
	fs.IntVar(&config.CacheSize, "cache", DefaultCache, "Number of responses cached by the server (0 to disable).")
	fs.StringVar(&config.Output, "output", "", "Output file path.")
	fs.StringVar(&config.Output, "o", "", "Output file path (shorthand).")
	fs.IntVar(&config.CPU, "cpu", -1, "Pin the stats sampler to this CPU (-1 to disable).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.BoolVar(&config.Trace, "trace", false, "Print OpenTelemetry spans to stderr.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error).")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML configuration file.")
	fs.StringVar(&config.Completion, "completion", "", "Print a shell completion script (bash, zsh, fish).")
	return fs
}

// FlagSet returns the program's flags bound to a throwaway configuration,
// for tools such as completion generators.
func FlagSet(programName string) *flag.FlagSet {
	return newFlagSet(programName, &AppConfig{})
}

// IsHelp reports whether err is the result of -h or -help.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
