package ui

import (
	"os"
	"testing"
)

func TestSetTheme(t *testing.T) {
	original := GetCurrentTheme()
	defer SetCurrentTheme(original)

	tests := []struct {
		name  string
		want  Theme
		known bool
	}{
		{"dark", DarkTheme, true},
		{"light", LightTheme, true},
		{"none", NoColorTheme, true},
		{"solarized", DarkTheme, false},
		{"", DarkTheme, false},
	}
	for _, tt := range tests {
		if known := SetTheme(tt.name); known != tt.known {
			t.Errorf("SetTheme(%q) known = %v, want %v", tt.name, known, tt.known)
		}
		if got := GetCurrentTheme().Name; got != tt.want.Name {
			t.Errorf("SetTheme(%q): theme %q, want %q", tt.name, got, tt.want.Name)
		}
	}
}

func TestThemeNames(t *testing.T) {
	got := ThemeNames()
	want := []string{"dark", "light", "none"}
	if len(got) != len(want) {
		t.Fatalf("ThemeNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ThemeNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInitTheme(t *testing.T) {
	original := GetCurrentTheme()
	defer SetCurrentTheme(original)

	t.Run("flag disables colors", func(t *testing.T) {
		t.Setenv(ThemeEnv, "light")
		InitTheme(true)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("theme = %q, want none", GetCurrentTheme().Name)
		}
	})

	t.Run("NO_COLOR with empty value disables colors", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		InitTheme(false)
		if GetCurrentTheme().Name != "none" {
			t.Errorf("theme = %q, want none", GetCurrentTheme().Name)
		}
	})

	t.Run("theme variable selects the theme", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		os.Unsetenv("NO_COLOR")
		t.Setenv(ThemeEnv, "light")
		InitTheme(false)
		if GetCurrentTheme().Name != "light" {
			t.Errorf("theme = %q, want light", GetCurrentTheme().Name)
		}
	})
}

func TestColorFunctions(t *testing.T) {
	original := GetCurrentTheme()
	defer SetCurrentTheme(original)

	SetTheme("dark")
	if ColorGreen() != DarkTheme.Success || ColorRed() != DarkTheme.Error || ColorReset() != DarkTheme.Reset {
		t.Error("color helpers should follow the dark theme")
	}
	if ColorYellow() != DarkTheme.Warning || ColorBold() != DarkTheme.Bold {
		t.Error("warning and bold should follow the dark theme")
	}

	SetTheme("none")
	for name, got := range map[string]string{
		"reset": ColorReset(), "green": ColorGreen(), "blue": ColorBlue(),
		"cyan": ColorCyan(), "yellow": ColorYellow(), "bold": ColorBold(),
	} {
		if got != "" {
			t.Errorf("%s with the none theme = %q, want empty", name, got)
		}
	}
}
