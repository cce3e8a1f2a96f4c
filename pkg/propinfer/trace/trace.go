// Package trace prints colorized debug lines for the REPL driver, reviving
// the original Rust source's print_red!/print_green!/print_yellow!/
// print_blue! inference-trace macros as plain Go functions. Color is only
// emitted when the destination is a real terminal (mattn/go-isatty); piped
// or redirected output gets plain text.
package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	red    = "\x1b[31m"
	green  = "\x1b[32m"
	yellow = "\x1b[33m"
	blue   = "\x1b[34m"
	reset  = "\x1b[0m"
)

// Writer colorizes Red/Green/Yellow/Blue lines written to an underlying
// io.Writer, gating color on whether that writer is an attached terminal.
type Writer struct {
	out   io.Writer
	color bool
}

// New wraps out, auto-detecting terminal color support via isatty when out
// is an *os.File; any other io.Writer is treated as non-interactive.
func New(out io.Writer) *Writer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, color: color}
}

// Red prints an error/failure trace line (factor-model or construction errors).
func (w *Writer) Red(format string, args ...any) { w.printf(red, format, args...) }

// Green prints a success trace line (pass completion, pinned evidence).
func (w *Writer) Green(format string, args ...any) { w.printf(green, format, args...) }

// Yellow prints a warning trace line (degenerate marginals, cap-near misses).
func (w *Writer) Yellow(format string, args ...any) { w.printf(yellow, format, args...) }

// Blue prints an informational trace line (state transitions, node counts).
func (w *Writer) Blue(format string, args ...any) { w.printf(blue, format, args...) }

func (w *Writer) printf(color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		fmt.Fprintf(w.out, "%s%s%s\n", color, msg, reset)
		return
	}
	fmt.Fprintln(w.out, msg)
}
