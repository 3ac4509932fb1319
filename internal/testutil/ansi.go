// Package testutil holds helpers shared by the tests of several packages.
package testutil

import (
	"regexp"
	"strings"
	"testing"
)

// ansiRegex matches CSI escape sequences such as "\x1b[38;5;39m".
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes from s.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// AssertContains reports every fragment of wants missing from the
// color-stripped output.
func AssertContains(t testing.TB, output string, wants ...string) {
	t.Helper()
	plain := StripAnsiCodes(output)
	for _, w := range wants {
		if !strings.Contains(plain, w) {
			t.Errorf("output missing %q:\n%s", w, plain)
		}
	}
}
