// Package ui holds the terminal color themes shared by the CLI, the REPL and
// the usage message.
package ui

import (
	"os"
	"sort"
	"sync"
)

// ThemeEnv selects a theme by name when colors are enabled.
const ThemeEnv = "FIBDRV_THEME"

// Theme defines a color scheme for UI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	Name      string
	Primary   string // offsets, flag names
	Secondary string // defaults, sample counts
	Success   string
	Warning   string // headers, durations
	Error     string
	Bold      string
	Reset     string
}

var (
	// DarkTheme is the default, for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// LightTheme uses darker colors for light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Bold:      "\033[1m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames returns the registered theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates a theme by name and reports whether the name was
// known. Unknown names select DarkTheme.
func SetTheme(name string) bool {
	t, ok := themes[name]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
	return ok
}

// InitTheme picks the startup theme. The noColor flag and the NO_COLOR
// variable (https://no-color.org/, any value) disable colors; otherwise
// FIBDRV_THEME names the theme.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnv))
}
