package console

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
)

// StartProgress begins rendering a download and returns the update callback
// and a function to call once the transfer ends. total is the expected size
// as far as it is known up front; a non-positive total starts a spinner that
// shows the byte count only. Totals reported by updates take precedence when
// they are known.
func (c *Console) StartProgress(title string, total int64) (func(downloaded, total int64), func()) {
	if c.quiet {
		return func(int64, int64) {}, func() {}
	}

	if total <= 0 {
		return c.startSpinner(title)
	}

	return c.startBar(title, total)
}

// startBar renders a percentage bar with human-readable sizes in the title.
func (c *Console) startBar(title string, expected int64) (func(int64, int64), func()) {
	bar, err := pterm.DefaultProgressbar.
		WithWriter(c.out).
		WithTotal(int(expected)).
		WithShowCount(false).
		WithRemoveWhenDone(false).
		WithTitle(title).
		Start()
	if err != nil {
		return c.startSpinner(title)
	}

	var current int64

	update := func(downloaded, size int64) {
		if size <= 0 {
			size = expected
		}

		// The bar cannot move past its fixed total.
		if step := min(downloaded, expected) - current; step > 0 {
			bar.Add(int(step))
			current += step
		}

		bar.UpdateTitle(progressTitle(title, downloaded, size))
	}

	return update, func() {
		_, _ = bar.Stop()
	}
}

// startSpinner renders an indeterminate spinner with the downloaded byte count.
func (c *Console) startSpinner(title string) (func(int64, int64), func()) {
	spinner, err := pterm.DefaultSpinner.WithWriter(c.out).Start(title)
	if err != nil {
		return func(int64, int64) {}, func() {}
	}

	update := func(downloaded, size int64) {
		spinner.UpdateText(progressTitle(title, downloaded, size))
	}

	return update, func() {
		_ = spinner.Stop()
	}
}

// progressTitle formats "title downloaded/total", or "title downloaded" when
// the total is unknown or smaller than what already arrived.
func progressTitle(title string, downloaded, total int64) string {
	downloaded = max(downloaded, 0)

	if total <= 0 || total < downloaded {
		return fmt.Sprintf("%s %s", title, humanize.IBytes(uint64(downloaded)))
	}

	return fmt.Sprintf("%s %s/%s", title, humanize.IBytes(uint64(downloaded)), humanize.IBytes(uint64(total)))
}
