package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors AppConfig in a YAML document. Pointer fields tell an
// absent key apart from a zero value.
type fileConfig struct {
	Mode         *string        `yaml:"mode"`
	From         *int64         `yaml:"from"`
	To           *int64         `yaml:"to"`
	Samples      *int           `yaml:"samples"`
	Capacity     *int           `yaml:"capacity"`
	MaxOffset    *int64         `yaml:"max_offset"`
	ResponseSize *int           `yaml:"response_size"`
	Device       *string        `yaml:"device"`
	Timeout      *time.Duration `yaml:"timeout"`
	Port         *string        `yaml:"port"`
	CacheSize    *int           `yaml:"cache"`
	Output       *string        `yaml:"output"`
	CPU          *int           `yaml:"cpu"`
	Quiet        *bool          `yaml:"quiet"`
	JSONOutput   *bool          `yaml:"json"`
	NoColor      *bool          `yaml:"no_color"`
	Trace        *bool          `yaml:"trace"`
	LogLevel     *string        `yaml:"log_level"`
}

// loadFile decodes a YAML configuration file. Unknown keys are rejected.
func loadFile(path string) (fileConfig, error) {
	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("reading config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fc, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fc, nil
}

// apply copies every key present in the file onto config unless the
// corresponding flag was given on the command line.
func (fc fileConfig) apply(config *AppConfig, fs *flag.FlagSet) {
	set(fs, fc.Mode, &config.Mode, "mode")
	set(fs, fc.From, &config.From, "from")
	set(fs, fc.To, &config.To, "to")
	set(fs, fc.Samples, &config.Samples, "samples")
	set(fs, fc.Capacity, &config.Capacity, "capacity")
	set(fs, fc.MaxOffset, &config.MaxOffset, "max-offset")
	set(fs, fc.ResponseSize, &config.ResponseSize, "response-size")
	set(fs, fc.Device, &config.Device, "device")
	set(fs, fc.Timeout, &config.Timeout, "timeout")
	set(fs, fc.Port, &config.Port, "port")
	set(fs, fc.CacheSize, &config.CacheSize, "cache")
	set(fs, fc.Output, &config.Output, "output", "o")
	set(fs, fc.CPU, &config.CPU, "cpu")
	set(fs, fc.Quiet, &config.Quiet, "quiet", "q")
	set(fs, fc.JSONOutput, &config.JSONOutput, "json")
	set(fs, fc.NoColor, &config.NoColor, "no-color")
	set(fs, fc.Trace, &config.Trace, "trace")
	set(fs, fc.LogLevel, &config.LogLevel, "log-level")
}

func set[T any](fs *flag.FlagSet, src *T, dst *T, flags ...string) {
	if src != nil && !anyFlagSet(fs, flags...) {
		*dst = *src
	}
}
