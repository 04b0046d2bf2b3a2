package diagnostics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/cubelang/internal/token"
	"github.com/funvibe/cubelang/internal/vm"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[1;31m"
	ansiBlue  = "\x1b[1;34m"
	ansiBold  = "\x1b[1m"
)

// ColorEnabled decides whether output to f should be colored for the
// configured mode ("auto", "always" or "never").
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// Printer renders diagnostics against the source they refer to.
type Printer struct {
	w        io.Writer
	file     string
	lines    []string
	color    bool
	maxWidth int
}

type PrinterOption func(*Printer)

func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) { p.color = enabled }
}

// WithMaxWidth truncates echoed source lines to n columns.
func WithMaxWidth(n int) PrinterOption {
	return func(p *Printer) { p.maxWidth = n }
}

func WithFile(name string) PrinterOption {
	return func(p *Printer) { p.file = name }
}

func NewPrinter(w io.Writer, source string, opts ...PrinterOption) *Printer {
	p := &Printer{w: w, lines: strings.Split(source, "\n"), file: "<input>"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Printer) paint(style, s string) string {
	if !p.color {
		return s
	}
	return style + s + ansiReset
}

func (p *Printer) sourceLine(n int) (string, bool) {
	if n < 1 || n > len(p.lines) {
		return "", false
	}
	line := strings.TrimRight(p.lines[n-1], "\r")
	if p.maxWidth > 0 && len([]rune(line)) > p.maxWidth {
		line = string([]rune(line)[:p.maxWidth]) + "..."
	}
	return line, true
}

// PrintError renders a compile-time error. Other errors are printed as
// plain messages.
func (p *Printer) PrintError(err error) {
	var d Diagnostic
	if !errors.As(err, &d) {
		fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, "error:"), err)
		return
	}
	base := d.Diagnostic()
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, fmt.Sprintf("error[%s]:", base.Code)), p.paint(ansiBold, base.Message))
	if base.Span != nil {
		p.printSnippet(*base.Span)
	}

	var fae *FunctionArgumentsError
	if errors.As(err, &fae) {
		fmt.Fprintf(p.w, "  arguments: (%s)\n", typeNames(fae.Arguments))
		fmt.Fprintf(p.w, "  overloads of %s:\n", fae.Name)
		for _, o := range fae.Function.Overloads {
			fmt.Fprintf(p.w, "    %s\n", o)
		}
	}
}

func (p *Printer) printSnippet(span token.Span) {
	fmt.Fprintf(p.w, "  %s %s:%d:%d\n", p.paint(ansiBlue, "-->"), p.file, span.StartLine, span.StartColumn)
	line, ok := p.sourceLine(span.StartLine)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%d", span.StartLine)
	pad := strings.Repeat(" ", len(gutter))
	fmt.Fprintf(p.w, "%s %s\n", pad, p.paint(ansiBlue, "|"))
	fmt.Fprintf(p.w, "%s %s %s\n", p.paint(ansiBlue, gutter), p.paint(ansiBlue, "|"), line)

	width := len([]rune(line))
	end := span.EndColumn
	if span.EndLine != span.StartLine || end > width+1 {
		end = width + 1
	}
	n := end - span.StartColumn
	if n < 1 {
		n = 1
	}
	marker := strings.Repeat(" ", span.StartColumn-1) + strings.Repeat("^", n)
	fmt.Fprintf(p.w, "%s %s %s\n", pad, p.paint(ansiBlue, "|"), p.paint(ansiRed, marker))
}

// ReportFault renders the traceback of a runtime fault, outermost call
// first.
func (p *Printer) ReportFault(f *vm.RuntimeFault) {
	fmt.Fprintln(p.w, "Traceback (most recent call last):")
	for i := len(f.Entries) - 1; i >= 0; i-- {
		e := f.Entries[i]
		fmt.Fprintf(p.w, "  %s\n", e)
		if line, ok := p.sourceLine(e.Line); ok && e.Line > 0 {
			fmt.Fprintf(p.w, "    %s\n", strings.TrimSpace(line))
		}
	}
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, f.Kind.String()+":"), f.Message)
}
