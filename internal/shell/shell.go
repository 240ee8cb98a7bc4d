// Package shell runs command lines through bash with an injected environment and streams
// their output, line by line, to a progress printer.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"

	foundationerrors "git.home.luguber.info/inful/aspnetcore-buildpack/internal/foundation/errors"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/logfields"
	"git.home.luguber.info/inful/aspnetcore-buildpack/internal/out"
)

// Context keys attached to shell errors.
const (
	ContextCommand  = "command"
	ContextExitCode = "exit_code"
	ContextOutput   = "output"
)

// Command is one command line to run.
type Command struct {
	Line string
	// Dir is the working directory; empty means the current directory.
	Dir string
	// Env overlays the parent environment. Values may reference $VAR: a reference to
	// the key itself resolves against the parent environment, other keys resolve
	// against Env first.
	Env map[string]string
}

// Runner executes Commands through bash.
type Runner struct {
	// Shell defaults to "bash".
	Shell string
	// Environ defaults to os.Environ.
	Environ func() []string
}

// NewRunner returns a Runner using bash and the process environment.
func NewRunner() *Runner {
	return &Runner{}
}

// Run runs cmd to completion, printing each output line to p. A non-zero exit is
// returned as a shell error whose context carries the combined output.
func (r *Runner) Run(ctx context.Context, cmd Command, p out.Printer) error {
	if p == nil {
		p = out.Discard
	}
	sh := r.Shell
	if sh == "" {
		sh = "bash"
	}
	environ := r.Environ
	if environ == nil {
		environ = os.Environ
	}

	// #nosec G204 -- command lines are assembled by the buildpack, not taken from user input
	c := exec.CommandContext(ctx, sh, "-c", cmd.Line)
	c.Dir = cmd.Dir
	c.Env = MergeEnv(environ(), cmd.Env)

	pr, pw := io.Pipe()
	c.Stdout = pw
	c.Stderr = pw

	var combined bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner := bufio.NewScanner(pr)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			combined.WriteString(line)
			combined.WriteByte('\n')
			p.Print(line)
		}
		// Drain whatever the scanner refused so the child never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}()

	slog.Debug("Running command", logfields.Command(cmd.Line), logfields.Dir(cmd.Dir))
	err := c.Run()
	_ = pw.Close()
	wg.Wait()

	if err == nil {
		return nil
	}

	b := foundationerrors.ShellError("command failed: "+cmd.Line).
		WithCause(err).
		WithContext(ContextCommand, cmd.Line).
		WithContext(ContextOutput, combined.String())
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		b = b.WithContext(ContextExitCode, exitErr.ExitCode())
	}
	return b.Build()
}

// OutputOf returns the combined output carried by a shell error, or "".
func OutputOf(err error) string {
	classified, ok := foundationerrors.AsClassified(err)
	if !ok {
		return ""
	}
	s, _ := classified.Context().GetString(ContextOutput)
	return s
}

// MergeEnv overlays env on base (KEY=VALUE pairs) after expanding $VAR references in the
// overlay values. Keys are emitted in sorted order after the untouched base entries.
func MergeEnv(base []string, env map[string]string) []string {
	parent := make(map[string]string, len(base))
	order := make([]string, 0, len(base))
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, seen := parent[k]; !seen {
			order = append(order, k)
		}
		parent[k] = v
	}

	merged := make([]string, 0, len(base)+len(env))
	for _, k := range order {
		if _, overridden := env[k]; overridden {
			continue
		}
		merged = append(merged, k+"="+parent[k])
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+expand(k, env, parent))
	}
	return merged
}

func expand(key string, env, parent map[string]string) string {
	return os.Expand(env[key], func(name string) string {
		if name != key {
			if v, ok := env[name]; ok {
				return v
			}
		}
		return parent[name]
	})
}
