// Package errors renders tcgopt diagnostics in the Rust-style format used
// across the toolchain: a colored header, a source excerpt, and a caret
// marker under the offending span.
package errors

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// Level is the severity of a Diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Diagnostic is a structured error or warning with enough context to render
// a Rust-like report: where it is, what went wrong, and optionally what to
// do about it.
type Diagnostic struct {
	Level    Level
	Code     string
	Message  string
	Position lexer.Position
	Length   int
	Notes    []string
	HelpText string
}

// Reporter formats Diagnostics against a specific source listing.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter builds a Reporter for filename/source, splitting source into
// lines once up front so repeated Format calls don't re-split.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// Format renders d as a multi-line, colorized report.
func (r *Reporter) Format(d Diagnostic) string {
	var b strings.Builder

	levelColor := levelColorFunc(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		fmt.Fprintf(&b, "%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s\n", levelColor(string(d.Level)), d.Message)
	}

	width := lineNumberWidth(d.Position.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&b, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Position.Line, d.Position.Column)
	fmt.Fprintf(&b, "%s %s\n", indent, dim("│"))

	if d.Position.Line > 1 && d.Position.Line-1 <= len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, d.Position.Line-1)), dim("│"), r.lines[d.Position.Line-2])
	}

	if d.Position.Line >= 1 && d.Position.Line <= len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, d.Position.Line)), dim("│"), r.lines[d.Position.Line-1])
		fmt.Fprintf(&b, "%s %s %s\n", indent, dim("│"), marker(d.Position.Column, d.Length, d.Level))
	}

	if d.Position.Line < len(r.lines) {
		fmt.Fprintf(&b, "%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, d.Position.Line+1)), dim("│"), r.lines[d.Position.Line])
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		fmt.Fprintf(&b, "%s %s %s %s\n", indent, dim("│"), noteColor("note:"), note)
	}

	if d.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(&b, "%s %s %s %s\n", indent, dim("│"), helpColor("help:"), d.HelpText)
	}

	b.WriteString("\n")
	return b.String()
}

func levelColorFunc(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func marker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", maxInt(0, column-1))

	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
