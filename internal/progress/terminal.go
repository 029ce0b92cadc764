package progress

import (
	"os"

	"github.com/wittefeng/juan-cli/internal/branding"
	"golang.org/x/term"
)

// TerminalCapabilities describes what the attached terminal can display.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	Width           int
}

// DetectTerminalCapabilities inspects f (usually os.Stderr, where the
// spinner draws). Honors NO_COLOR and <PREFIX>_ASCII=1.
func DetectTerminalCapabilities(f *os.File) TerminalCapabilities {
	isTTY := term.IsTerminal(int(f.Fd()))

	noColor := os.Getenv("NO_COLOR") != ""
	forceASCII := os.Getenv(branding.EnvVar("ASCII")) == "1"

	width := 0
	if isTTY {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	return TerminalCapabilities{
		IsTTY:           isTTY,
		SupportsColor:   isTTY && !noColor,
		SupportsUnicode: isTTY && !forceASCII,
		Width:           width,
	}
}

// spinnerSet picks a braille spinner for unicode terminals and |/-\ otherwise.
func spinnerSet(caps TerminalCapabilities) int {
	if caps.SupportsUnicode {
		return 14
	}
	return 9
}
