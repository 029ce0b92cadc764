package clierr

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
	causeFmt    = color.New(color.Faint).SprintFunc()
)

// Format renders err for the terminal. When verbose is set, every wrapped
// cause is listed on its own line.
func Format(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	return format(err, verbose, !color.NoColor)
}

// FormatPlain renders err without colors.
func FormatPlain(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	return format(err, verbose, false)
}

// Fprint writes the formatted error to w.
func Fprint(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}
	fmt.Fprint(w, Format(err, verbose))
}

func format(err error, verbose, useColors bool) string {
	var sb strings.Builder
	paint := func(f func(a ...interface{}) string, s string) string {
		if useColors {
			return f(s)
		}
		return s
	}

	kind := KindOf(err)
	sb.WriteString(paint(errorLabel, "Error"))
	if kind != Unknown {
		sb.WriteString(" [")
		sb.WriteString(paint(categoryFmt, kind.String()))
		sb.WriteString("]")
	}
	sb.WriteString(": ")
	sb.WriteString(paint(errorMsg, err.Error()))
	sb.WriteString("\n")

	if verbose {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			sb.WriteString("  caused by: ")
			sb.WriteString(paint(causeFmt, cause.Error()))
			sb.WriteString("\n")
		}
	}

	var e *Error
	if errors.As(err, &e) && len(e.Remediation) > 0 {
		sb.WriteString("\n")
		sb.WriteString(paint(fixLabel, "To fix this:"))
		sb.WriteString("\n")
		for _, step := range e.Remediation {
			sb.WriteString("  ")
			sb.WriteString(paint(bullet, "•"))
			sb.WriteString(" ")
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
