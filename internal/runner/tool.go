// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"
	"mvdan.cc/sh/v3/syntax"
)

// ErrEmptyCommand is returned when a configured command line has no words.
var ErrEmptyCommand = errors.New("empty command line")

type (
	// Command is one build tool call. Args follow the configured tool command;
	// Env entries (KEY=VALUE) are added on top of the process environment.
	Command struct {
		Args []string
		Env  []string
	}

	// Tool runs build tool commands in the current working directory.
	Tool interface {
		Exec(ctx context.Context, cmd Command) error
	}

	// ExecTool runs the configured build tool as a child process.
	ExecTool struct {
		argv   []string
		stdout io.Writer
		stderr io.Writer
	}

	// DryRunTool logs the command that would run and reports success.
	DryRunTool struct {
		argv   []string
		logger *log.Logger
	}

	// ToolError reports a non-zero exit or a failure to start the tool.
	ToolError struct {
		Argv     []string
		ExitCode int
		Err      error
	}
)

// Error implements the error interface.
func (e *ToolError) Error() string {
	line := RenderCommandLine(e.Argv)
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", line, e.Err)
	}
	return fmt.Sprintf("%s: exit status %d", line, e.ExitCode)
}

// Unwrap returns the start error, if any.
func (e *ToolError) Unwrap() error { return e.Err }

// SplitCommandLine splits a configured command line into words using shell
// quoting rules. Environment references are expanded from the process environment.
func SplitCommandLine(line string) ([]string, error) {
	words, err := shell.Fields(line, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("parse command line %q: %w", line, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return words, nil
}

// RenderCommandLine quotes argv for display so it can be pasted into a shell.
func RenderCommandLine(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		quoted, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			quoted = fmt.Sprintf("%q", arg)
		}
		parts[i] = quoted
	}
	return strings.Join(parts, " ")
}

// NewExecTool creates a tool for the given command line (e.g. "cargo" or
// "cargo +nightly"). Output is streamed to stdout and stderr.
func NewExecTool(commandLine string, stdout, stderr io.Writer) (*ExecTool, error) {
	argv, err := SplitCommandLine(commandLine)
	if err != nil {
		return nil, err
	}
	return &ExecTool{argv: argv, stdout: stdout, stderr: stderr}, nil
}

// Exec runs the tool and waits for it to exit.
func (t *ExecTool) Exec(ctx context.Context, cmd Command) error {
	argv := append(append([]string(nil), t.argv...), cmd.Args...)

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stdout = t.stdout
	c.Stderr = t.stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ToolError{Argv: argv, ExitCode: exitErr.ExitCode()}
		}
		return &ToolError{Argv: argv, ExitCode: -1, Err: err}
	}
	return nil
}

// NewDryRunTool creates a tool that only logs the commands it is given.
func NewDryRunTool(commandLine string, logger *log.Logger) (*DryRunTool, error) {
	argv, err := SplitCommandLine(commandLine)
	if err != nil {
		return nil, err
	}
	return &DryRunTool{argv: argv, logger: logger}, nil
}

// Exec logs the command line and the working directory.
func (t *DryRunTool) Exec(_ context.Context, cmd Command) error {
	argv := append(append([]string(nil), t.argv...), cmd.Args...)
	wd, _ := os.Getwd()
	t.logger.Info("dry run", "dir", wd, "cmd", RenderCommandLine(argv), "env", strings.Join(cmd.Env, " "))
	return nil
}
