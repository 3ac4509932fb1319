package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt64 returns the prefixed variable parsed as int64, or the default
// value if it is unset or invalid.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts "true", "1", "yes" as true and "false", "0", "no" as
// false, case-insensitively. Anything else keeps the default.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// anyFlagSet reports whether one of the aliases of a flag was set.
func anyFlagSet(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
//
// Supported environment variables:
//   - FIBDRV_MODE: Run mode (read, stats, verify, serve, repl)
//   - FIBDRV_FROM, FIBDRV_TO: Offset range (int64)
//   - FIBDRV_SAMPLES: Measurements per offset (int)
//   - FIBDRV_CAPACITY: Digit capacity (int)
//   - FIBDRV_MAX_OFFSET: Device cursor limit (int64)
//   - FIBDRV_RESPONSE_SIZE: Device read buffer size (int)
//   - FIBDRV_CACHE: Server cache size (int)
//   - FIBDRV_CPU: CPU to pin the sampler to (int)
//   - FIBDRV_TIMEOUT: Run timeout (duration: "5m", "30s")
//   - FIBDRV_DEVICE, FIBDRV_PORT, FIBDRV_OUTPUT, FIBDRV_LOG_LEVEL (string)
//   - FIBDRV_QUIET, FIBDRV_JSON, FIBDRV_NO_COLOR, FIBDRV_TRACE (bool: true/false, 1/0, yes/no)
//   - FIBDRV_CONFIG: YAML configuration file (string)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "from") {
		config.From = getEnvInt64("FROM", config.From)
	}
	if !isFlagSet(fs, "to") {
		config.To = getEnvInt64("TO", config.To)
	}
	if !isFlagSet(fs, "max-offset") {
		config.MaxOffset = getEnvInt64("MAX_OFFSET", config.MaxOffset)
	}
	if !isFlagSet(fs, "samples") {
		config.Samples = getEnvInt("SAMPLES", config.Samples)
	}
	if !isFlagSet(fs, "capacity") {
		config.Capacity = getEnvInt("CAPACITY", config.Capacity)
	}
	if !isFlagSet(fs, "response-size") {
		config.ResponseSize = getEnvInt("RESPONSE_SIZE", config.ResponseSize)
	}
	if !isFlagSet(fs, "cache") {
		config.CacheSize = getEnvInt("CACHE", config.CacheSize)
	}
	if !isFlagSet(fs, "cpu") {
		config.CPU = getEnvInt("CPU", config.CPU)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "mode") {
		config.Mode = getEnvString("MODE", config.Mode)
	}
	if !isFlagSet(fs, "device") {
		config.Device = getEnvString("DEVICE", config.Device)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !anyFlagSet(fs, "output", "o") {
		config.Output = getEnvString("OUTPUT", config.Output)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !anyFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "trace") {
		config.Trace = getEnvBool("TRACE", config.Trace)
	}
}
