// Package progress renders a spinner while long-running pipeline stages
// (template download, registry lookups) are in flight. Non-terminal outputs
// get a silent no-op so logs and CI output stay clean.
package progress

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Indicator is anything that can show activity between Start and Stop.
type Indicator interface {
	Start()
	Stop()
}

// Factory creates an Indicator carrying msg.
type Factory func(msg string) Indicator

// Spinner wraps briandowns/spinner. A nil inner spinner makes every method a no-op.
type Spinner struct {
	s *spinner.Spinner
}

// NewSpinner returns a spinner drawing on f, or a no-op spinner when f is
// not a terminal.
func NewSpinner(f *os.File, msg string) *Spinner {
	caps := DetectTerminalCapabilities(f)
	if !caps.IsTTY {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[spinnerSet(caps)], 100*time.Millisecond,
		spinner.WithWriter(f),
		spinner.WithHiddenCursor(true),
	)
	s.Suffix = " " + msg
	return &Spinner{s: s}
}

// StderrFactory returns a Factory drawing on stderr.
func StderrFactory() Factory {
	return func(msg string) Indicator { return NewSpinner(os.Stderr, msg) }
}

// Noop returns a Factory whose indicators do nothing.
func Noop() Factory {
	return func(string) Indicator { return &Spinner{} }
}

// Start begins animating.
func (sp *Spinner) Start() {
	if sp.s != nil {
		sp.s.Start()
	}
}

// Stop halts the animation and clears the line.
func (sp *Spinner) Stop() {
	if sp.s != nil {
		sp.s.Stop()
	}
}
