package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
)

// errNoAnswer is returned when input ends before the user answers.
var errNoAnswer = errors.New("no answer on input")

// Confirm asks a yes/no question and blocks until the user answers.
// Anything but an explicit yes counts as no.
func (c *Console) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if c.interactive {
		return pterm.DefaultInteractiveConfirm.WithDefaultValue(false).Show(question)
	}

	return c.confirmLine(question)
}

// confirmLine prompts on out and reads a single line from in.
func (c *Console) confirmLine(question string) (bool, error) {
	c.print(fmt.Sprintf("%s (y/n): ", question))

	line, err := c.lines.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return false, errNoAnswer
		}

		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
