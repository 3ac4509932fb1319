// Package app wires the configuration, the device and the run modes of the
// fibdrv command together.
package app

import (
	"fmt"
	"io"
	"runtime"
)

// Build-time variables set via -ldflags:
//
//	go build -ldflags="-X github.com/agbru/fibdrv/internal/app.Version=v0.3.0 -X github.com/agbru/fibdrv/internal/app.Commit=abc123" ./cmd/fibdrv
var (
	// Version is the semantic version of the application (e.g., "v1.0.0").
	Version = "dev"
	// Commit is the short Git commit hash.
	Commit = "unknown"
	// BuildDate is the ISO 8601 timestamp of the build.
	BuildDate = "unknown"
)

// HasVersionFlag reports whether any argument asks for the version, so that
// -version works next to flags that would otherwise fail validation.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--version" || arg == "-version" || arg == "-V" {
			return true
		}
	}
	return false
}

// PrintVersion writes the version, build and runtime information to out.
func PrintVersion(out io.Writer) {
	fmt.Fprintf(out, "fibdrv %s\n", Version)
	fmt.Fprintf(out, "  Commit:     %s\n", Commit)
	fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// VersionData is the machine-readable form of PrintVersion.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the current version information.
func GetVersionInfo() VersionData {
	return VersionData{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
