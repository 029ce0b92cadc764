package project

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Choice is one option of a Select prompt.
type Choice struct {
	Name  string // shown to the user
	Value string // returned when chosen
}

// Prompter collects answers from the user. Implementations return
// ErrAborted when the user cancels.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	Select(message string, choices []Choice) (string, error)
	Input(message, def string, validate func(string) error) (string, error)
}

// LinePrompter asks questions on w and reads one answer per line from r.
// End of input cancels the prompt.
type LinePrompter struct {
	r *bufio.Reader
	w io.Writer
}

// NewLinePrompter returns a LinePrompter reading r and writing w.
func NewLinePrompter(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(r), w: w}
}

func (p *LinePrompter) readLine() (string, error) {
	line, err := p.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", ErrAborted
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. An empty answer takes def.
func (p *LinePrompter) Confirm(message string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.w, "? %s (%s) ", message, hint)
		answer, err := p.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.w, "  Please answer y or n.")
	}
}

// Select presents a numbered list and returns the chosen value.
func (p *LinePrompter) Select(message string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices for %q", message)
	}
	for {
		fmt.Fprintf(p.w, "? %s\n", message)
		for i, c := range choices {
			fmt.Fprintf(p.w, "  %d) %s\n", i+1, c.Name)
		}
		fmt.Fprintf(p.w, "Enter number [1-%d]: ", len(choices))

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		num, err := strconv.Atoi(answer)
		if err == nil && num >= 1 && num <= len(choices) {
			return choices[num-1].Value, nil
		}
		fmt.Fprintf(p.w, "  Invalid selection %q: choose 1-%d.\n", answer, len(choices))
	}
}

// Input reads free text. An empty answer takes def. The question repeats
// until validate accepts the answer.
func (p *LinePrompter) Input(message, def string, validate func(string) error) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.w, "? %s (%s) ", message, def)
		} else {
			fmt.Fprintf(p.w, "? %s ", message)
		}
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if validate == nil {
			return answer, nil
		}
		if err := validate(answer); err != nil {
			fmt.Fprintf(p.w, "  %v\n", err)
			continue
		}
		return answer, nil
	}
}
