package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/wittefeng/juan-cli/internal/clierr"
)

// Allowed lists the programs a template may run.
var Allowed = []string{"npm", "cnpm"}

// SpawnError means the process could not be started at all.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Runner executes template install and start commands.
type Runner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Stdin, Stdout and Stderr default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Run splits commandLine on whitespace and runs it with inherited stdio.
// The program must be on the allow-list; otherwise CommandNotAllowed is
// returned before anything is spawned. A process that ran returns its exit
// code with a nil error.
func (r *Runner) Run(ctx context.Context, commandLine string) (int, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return 0, clierr.New(clierr.ValidationFailed, "empty command")
	}
	program, args := fields[0], fields[1:]
	if !slices.Contains(Allowed, program) {
		return 0, clierr.New(clierr.CommandNotAllowed, fmt.Sprintf("command %q is not allowed", program),
			"Templates may only run: "+strings.Join(Allowed, ", "))
	}

	name, argv := platformCommand(program, args)
	cmd := exec.CommandContext(ctx, name, argv...)
	cmd.Dir = r.Dir
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}
	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}
	if r.Stderr != nil {
		cmd.Stderr = r.Stderr
	}

	if r.Logger != nil {
		r.Logger.Debug("running command", "command", commandLine, "dir", r.Dir)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, &SpawnError{Command: commandLine, Err: err}
}

// platformCommand wraps the program for cmd.exe on Windows, where npm is a
// batch file.
func platformCommand(program string, args []string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", append([]string{"/c", program}, args...)
	}
	return program, args
}
