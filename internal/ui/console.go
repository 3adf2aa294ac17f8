// File: internal/ui/console.go
// Brief: Colored step console output.

// Package ui renders human-readable step progress: a header per step,
// severity-tagged lines per check, and a one-line result. Colors follow
// --color auto|always|never with tty detection in auto mode.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	okTag   = color.New(color.FgGreen, color.Bold)
	warnTag = color.New(color.FgYellow, color.Bold)
	failTag = color.New(color.FgRed, color.Bold)
	header  = color.New(color.Bold)
	dim     = color.New(color.FgHiBlack)
)

// Configure applies the color mode. In auto mode colors stay on only when
// out is a terminal.
func Configure(mode string, out io.Writer) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(out)
	}
}

// StepConsole writes progress for one step invocation.
type StepConsole struct {
	out io.Writer
}

func NewStepConsole(out io.Writer) *StepConsole {
	return &StepConsole{out: out}
}

// Begin prints the step header.
func (c *StepConsole) Begin(step, resource string) {
	fmt.Fprintf(c.out, "%s %s\n", header.Sprintf("==> %s", step), dim.Sprintf("(%s)", resource))
}

// Note prints an informational line.
func (c *StepConsole) Note(msg string) {
	fmt.Fprintf(c.out, "    %s\n", msg)
}

// Warn prints a warning line. Warnings never fail a step.
func (c *StepConsole) Warn(msg string) {
	fmt.Fprintf(c.out, "    %s %s\n", warnTag.Sprint("WARN"), msg)
}

// OK prints the step's success line. noop marks an idempotent re-run that
// found the desired state already in place.
func (c *StepConsole) OK(step string, noop bool) {
	suffix := ""
	if noop {
		suffix = dim.Sprint(" (already in desired state)")
	}
	fmt.Fprintf(c.out, "%s %s%s\n", okTag.Sprint("OK"), step, suffix)
}

// Fail prints the step's failure line with its error kind.
func (c *StepConsole) Fail(step, kind, msg string) {
	fmt.Fprintf(c.out, "%s %s [%s] %s\n", failTag.Sprint("FAIL"), step, kind, msg)
}
