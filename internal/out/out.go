// Package out renders user-facing buildpack output: step headers, indented progress lines
// and failure messages in the format staging logs expect.
package out

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const (
	stepPrefix   = "-----> "
	indentPrefix = "       "
)

// Printer receives progress lines.
type Printer interface {
	Print(msg string)
}

// StepReporter reports progress of one named step.
type StepReporter interface {
	Printer
	Succeed()
	Fail(msg string)
}

// Reporter opens steps and reports messages outside any step.
type Reporter interface {
	Printer
	Step(name string) StepReporter
	Warn(msg string)
	Fail(msg string)
}

// Console writes buildpack output to w.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Print writes msg as-is, one line per line of msg.
func (c *Console) Print(msg string) {
	c.writeLines("", msg)
}

// Step writes the step header and returns a reporter for the step body.
func (c *Console) Step(name string) StepReporter {
	c.writeLines(stepPrefix, name)
	return &consoleStep{console: c}
}

func (c *Console) Warn(msg string) {
	c.writeLines(indentPrefix+"**WARNING** ", msg)
}

func (c *Console) Fail(msg string) {
	c.writeLines(indentPrefix+"**ERROR** ", msg)
}

func (c *Console) writeLines(prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		_, _ = fmt.Fprintf(c.w, "%s%s\n", prefix, line)
	}
}

type consoleStep struct {
	console *Console
	done    bool
}

func (s *consoleStep) Print(msg string) {
	s.console.writeLines(indentPrefix, msg)
}

// Succeed is silent; a step without a failure line succeeded.
func (s *consoleStep) Succeed() {
	s.done = true
}

func (s *consoleStep) Fail(msg string) {
	if s.done {
		return
	}
	s.done = true
	s.console.writeLines(indentPrefix+"FAILED: ", msg)
}

// Discard is a Printer that drops everything.
var Discard Printer = discard{}

type discard struct{}

func (discard) Print(string) {}
