// Package terminal prints user-facing progress lines.
package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Printer writes progress, success, and warning lines. A quiet printer only
// writes warnings.
type Printer struct {
	w     io.Writer
	quiet bool

	step    *color.Color
	success *color.Color
	warn    *color.Color
	muted   *color.Color
}

// Options configure a Printer.
type Options struct {
	// Quiet suppresses progress and success lines.
	Quiet bool
	// NoColor disables colors even on a terminal.
	NoColor bool
}

// NewPrinter returns a Printer writing to w. Colors are used only when w is a
// terminal and NoColor is unset.
func NewPrinter(w io.Writer, opts Options) *Printer {
	p := &Printer{
		w:       w,
		quiet:   opts.Quiet,
		step:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		muted:   color.New(color.FgHiBlack),
	}

	if opts.NoColor || !IsTerminal(w) {
		for _, c := range []*color.Color{p.step, p.success, p.warn, p.muted} {
			c.DisableColor()
		}
	} else {
		for _, c := range []*color.Color{p.step, p.success, p.warn, p.muted} {
			c.EnableColor()
		}
	}

	return p
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// Step prints a progress line.
func (p *Printer) Step(format string, args ...any) {
	if p.quiet {
		return
	}

	p.step.Fprint(p.w, "==> ")
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Success prints a completion line.
func (p *Printer) Success(format string, args ...any) {
	if p.quiet {
		return
	}

	p.success.Fprintf(p.w, format+"\n", args...)
}

// Detail prints a dimmed secondary line.
func (p *Printer) Detail(format string, args ...any) {
	if p.quiet {
		return
	}

	p.muted.Fprintf(p.w, "    "+format+"\n", args...)
}

// Warn prints a warning line, even when quiet.
func (p *Printer) Warn(format string, args ...any) {
	p.warn.Fprint(p.w, "warning: ")
	fmt.Fprintf(p.w, format+"\n", args...)
}
