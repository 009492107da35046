package screen

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when the dashboard is asked to animate on
// something that is not a terminal.
var ErrNotTerminal = errors.New("output is not a terminal")

// Terminal defines operations for interacting with the terminal.
type Terminal interface {
	Setup() error                            // Initialize terminal settings
	Restore()                                // Restore terminal to original state
	GetSize() (width, height int, err error) // Get terminal dimensions in cells
}

// StdTerminal implements Terminal for a real tty.
type StdTerminal struct {
	out   *termenv.Output
	in    *os.File
	outFd int
	state *term.State
}

// NewStdTerminal wraps the given output and input files.
func NewStdTerminal(out *termenv.Output, outFile, in *os.File) (*StdTerminal, error) {
	if !isatty.IsTerminal(outFile.Fd()) && !isatty.IsCygwinTerminal(outFile.Fd()) {
		return nil, ErrNotTerminal
	}
	return &StdTerminal{out: out, in: in, outFd: int(outFile.Fd())}, nil
}

// Setup switches to the alternate buffer, hides the cursor and puts the
// input in raw mode so single keys reach the dashboard.
func (t *StdTerminal) Setup() error {
	t.out.AltScreen()
	t.out.HideCursor()
	t.out.ClearScreen()
	if t.in == nil || !term.IsTerminal(int(t.in.Fd())) {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.state = state
	return nil
}

// Restore resets the terminal to its original state.
func (t *StdTerminal) Restore() {
	if t.state != nil {
		_ = term.Restore(int(t.in.Fd()), t.state)
		t.state = nil
	}
	t.out.Reset()
	t.out.ShowCursor()
	t.out.ExitAltScreen()
}

// GetSize returns the terminal's width and height in characters.
func (t *StdTerminal) GetSize() (width, height int, err error) {
	width, height, err = term.GetSize(t.outFd)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, errors.New("invalid terminal dimensions")
	}
	return width, height, nil
}
