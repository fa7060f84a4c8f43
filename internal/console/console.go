package console

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Console writes status text and reads confirmations.
type Console struct {
	// out receives every rendered line.
	out io.Writer
	// in is the raw input stream, used to detect a terminal.
	in io.Reader
	// lines buffers in across prompts so piped answers are not lost.
	lines *bufio.Reader
	// quiet suppresses status and progress output.
	quiet bool
	// interactive enables the pterm keyboard prompt instead of line input.
	interactive bool
}

// Option configures a Console.
type Option func(*Console)

// WithQuiet suppresses status and progress output.
func WithQuiet(quiet bool) Option {
	return func(c *Console) {
		c.quiet = quiet
	}
}

// WithInteractive forces or disables the keyboard-driven prompt.
func WithInteractive(interactive bool) Option {
	return func(c *Console) {
		c.interactive = interactive
	}
}

// New creates a console on the given streams.
// Keyboard prompts are used only when both streams are terminals.
func New(out io.Writer, in io.Reader, opts ...Option) *Console {
	c := &Console{
		out:         out,
		in:          in,
		lines:       bufio.NewReader(in),
		interactive: isTerminal(out) && isTerminal(in),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Stdio creates a console on the process standard streams.
func Stdio(opts ...Option) *Console {
	return New(os.Stdout, os.Stdin, opts...)
}

// Infof prints a neutral status line.
func (c *Console) Infof(format string, args ...any) {
	if c.quiet {
		return
	}

	c.print(pterm.Info.Sprintfln(format, args...))
}

// Successf prints a success status line.
func (c *Console) Successf(format string, args ...any) {
	if c.quiet {
		return
	}

	c.print(pterm.Success.Sprintfln(format, args...))
}

// Warnf prints a warning, even in quiet mode.
func (c *Console) Warnf(format string, args ...any) {
	c.print(pterm.Warning.Sprintfln(format, args...))
}

// Errorf prints an error, even in quiet mode.
func (c *Console) Errorf(format string, args ...any) {
	c.print(pterm.Error.Sprintfln(format, args...))
}

func (c *Console) print(s string) {
	_, _ = fmt.Fprint(c.out, s)
}

// isTerminal reports whether a stream is attached to a terminal.
func isTerminal(stream any) bool {
	file, ok := stream.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
