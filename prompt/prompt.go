// Package prompt provides bgit's interactive terminal prompts.
//
// Every component that needs user input takes an Interactor, so
// non-interactive contexts (CI, tests) can inject a scripted
// implementation instead of reading the terminal. Secrets are read
// without echo and are never written back to the terminal or logs.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Interactor is the user-interaction surface used by the auth subsystem.
type Interactor interface {
	// Confirm asks a yes/no question, returning def when the user just
	// presses enter. A read failure returns false, never an error: a
	// declined prompt and an unanswerable prompt are handled the same way.
	Confirm(question string, def bool) bool

	// Input reads a line of text. prefill, when non-empty, is offered as
	// the default and returned if the user enters nothing.
	Input(prompt, prefill string) (string, error)

	// Password reads a secret without echoing it.
	Password(prompt string) (string, error)
}

// Terminal reads prompts from an input stream and writes them to an
// output stream, normally the process's stdin/stdout.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns an Interactor bound to the process terminal.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stdout}
}

// Confirm asks a yes/no question and returns the user's answer.
func (t *Terminal) Confirm(question string, def bool) bool {
	hint := "[Y/n]"
	if !def {
		hint = "[y/N]"
	}
	fmt.Fprintf(t.Out, "%s %s ", color.CyanString("?"), question)
	fmt.Fprintf(t.Out, "%s ", hint)

	reader := bufio.NewReader(t.In)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return def
	}
	return strings.HasPrefix(answer, "y")
}

// Input reads a line of text, falling back to prefill on empty input.
func (t *Terminal) Input(prompt, prefill string) (string, error) {
	if prefill != "" {
		fmt.Fprintf(t.Out, "%s %s [%s]: ", color.CyanString("?"), prompt, prefill)
	} else {
		fmt.Fprintf(t.Out, "%s %s: ", color.CyanString("?"), prompt)
	}

	reader := bufio.NewReader(t.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return prefill, nil
	}
	return line, nil
}

// Password reads a secret. When stdin is a terminal the echo is disabled;
// otherwise it falls back to a plain line read so piped input still works.
func (t *Terminal) Password(prompt string) (string, error) {
	fmt.Fprintf(t.Out, "%s %s: ", color.CyanString("?"), prompt)

	if f, ok := t.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.Out)
		if err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(t.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Status prints a user-facing progress line.
func Status(format string, args ...any) {
	fmt.Printf("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a user-facing warning line.
func Warn(format string, args ...any) {
	fmt.Printf("%s %s\n", color.YellowString("!"), fmt.Sprintf(format, args...))
}

// Fail prints a user-facing failure line.
func Fail(format string, args ...any) {
	fmt.Printf("%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

// NonInteractive answers every prompt with its default and fails any
// request that has no sensible default. Used when bgit runs without a
// terminal attached.
type NonInteractive struct{}

// Confirm returns false without prompting.
func (NonInteractive) Confirm(question string, def bool) bool { return false }

// Input returns the prefill, or an error when there is none.
func (NonInteractive) Input(prompt, prefill string) (string, error) {
	if prefill != "" {
		return prefill, nil
	}
	return "", fmt.Errorf("input %q required but running non-interactively", prompt)
}

// Password always fails; secrets cannot be defaulted.
func (NonInteractive) Password(prompt string) (string, error) {
	return "", fmt.Errorf("secret %q required but running non-interactively", prompt)
}

var (
	_ Interactor = (*Terminal)(nil)
	_ Interactor = NonInteractive{}
)
