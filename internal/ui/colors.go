package ui

// Color helpers read the current theme at call time.

func ColorReset() string  { return GetCurrentTheme().Reset }
func ColorRed() string    { return GetCurrentTheme().Error }
func ColorGreen() string  { return GetCurrentTheme().Success }
func ColorYellow() string { return GetCurrentTheme().Warning }
func ColorBlue() string   { return GetCurrentTheme().Primary }
func ColorCyan() string   { return GetCurrentTheme().Secondary }
func ColorBold() string   { return GetCurrentTheme().Bold }
