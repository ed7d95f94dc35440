// Package progress shows a spinner while a long step runs and a result line
// when it ends. On non-terminal output the spinner is skipped and only the
// result lines are written.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const spinnerDelay = 100 * time.Millisecond

// ProgressDisplay renders step progress to a writer. The zero value is not
// usable; create one with NewProgressDisplay.
type ProgressDisplay struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols

	mu      sync.Mutex
	spinner *spinner.Spinner
	step    string
}

// NewProgressDisplay creates a display writing to out.
func NewProgressDisplay(out io.Writer, caps TerminalCapabilities) *ProgressDisplay {
	return &ProgressDisplay{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// StartStep begins a step. Any running spinner is stopped first.
func (d *ProgressDisplay) StartStep(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.step = message

	if !d.caps.IsTTY {
		return
	}

	s := spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerDelay,
		spinner.WithWriter(d.out),
		spinner.WithHiddenCursor(true),
	)
	s.Suffix = " " + message
	s.Start()
	d.spinner = s
}

// CompleteStep ends the current step with a success line. An empty message
// reuses the step's message.
func (d *ProgressDisplay) CompleteStep(message string) {
	d.finish(message, d.symbols.Checkmark, color.FgGreen)
}

// FailStep ends the current step with a failure line naming err.
func (d *ProgressDisplay) FailStep(err error) {
	d.mu.Lock()
	step := d.step
	d.mu.Unlock()

	d.finish(fmt.Sprintf("%s: %v", step, err), d.symbols.Failure, color.FgRed)
}

func (d *ProgressDisplay) finish(message, symbol string, attr color.Attribute) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	if message == "" {
		message = d.step
	}
	d.step = ""

	if d.caps.SupportsColor {
		symbol = color.New(attr, color.Bold).Sprint(symbol)
	}
	fmt.Fprintf(d.out, "%s %s\n", symbol, message)
}

func (d *ProgressDisplay) stopLocked() {
	if d.spinner == nil {
		return
	}
	d.spinner.Stop()
	d.spinner = nil
}
