// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/selection"

	"github.com/charmbracelet/log"
)

// ErrModuleBuild is the sentinel wrapped by ModuleBuildError.
var ErrModuleBuild = errors.New("module invocation failed")

type (
	// Context is the explicit per-run state handed to every invocation.
	Context struct {
		Action    plan.Action
		Selection selection.Selection
		// Env holds KEY=VALUE pairs added to the tool environment for this run.
		Env []string
	}

	// ModuleBuildError reports a failed invocation of one module/feature combination.
	ModuleBuildError struct {
		Module   string
		Features []string
		Action   plan.Action
		Err      error
	}

	// Options configures a Runner.
	Options struct {
		// Root is the workspace directory that contains the modules.
		Root string
		Tool Tool
		// Subcommands overrides the per-action subcommand words.
		Subcommands map[plan.Action][]string
		// ExtraArgs are appended after the feature arguments, per action.
		ExtraArgs map[plan.Action][]string
		Logger    *log.Logger
	}

	// Runner executes invocations and records them in its Log.
	Runner struct {
		root        string
		tool        Tool
		subcommands map[plan.Action][]string
		extraArgs   map[plan.Action][]string
		logger      *log.Logger
		log         *Log
	}
)

// Error implements the error interface.
func (e *ModuleBuildError) Error() string {
	target := e.Module
	if len(e.Features) > 0 {
		target += " (features: " + strings.Join(e.Features, " ") + ")"
	}
	return fmt.Sprintf("%s failed for module %s: %v", e.Action, target, e.Err)
}

// Unwrap returns ErrModuleBuild and the tool error.
func (e *ModuleBuildError) Unwrap() []error {
	return []error{ErrModuleBuild, e.Err}
}

// New creates a Runner with an empty log.
func New(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	return &Runner{
		root:        opts.Root,
		tool:        opts.Tool,
		subcommands: opts.Subcommands,
		extraArgs:   opts.ExtraArgs,
		logger:      logger,
		log:         NewLog(),
	}
}

// Log returns the invocation log of this runner.
func (r *Runner) Log() *Log {
	return r.log
}

// Command returns the tool command for an invocation under the given context.
func (r *Runner) Command(rc Context, inv plan.Invocation) Command {
	var args []string
	if sub, ok := r.subcommands[rc.Action]; ok && len(sub) > 0 {
		args = append(args, sub...)
	} else {
		args = append(args, rc.Action.Subcommand())
	}
	if len(inv.Features) > 0 {
		args = append(args, "--features", strings.Join(inv.Features, " "))
	}
	args = append(args, r.extraArgs[rc.Action]...)

	return Command{Args: args, Env: append([]string(nil), rc.Env...)}
}

// Run executes or skips one invocation and records it. Only successful and
// skipped invocations are recorded; a failure returns *ModuleBuildError.
func (r *Runner) Run(ctx context.Context, rc Context, inv plan.Invocation) error {
	logger := r.logger.With("module", inv.Module)
	if len(inv.Features) > 0 {
		logger = logger.With("features", strings.Join(inv.Features, " "))
	}

	if inv.Status == plan.StatusSkip {
		logger.Debug("skipping", "action", rc.Action)
		r.log.append(Record{Module: inv.Module, Features: inv.Features, Status: StatusSkipped})
		return nil
	}

	cmd := r.Command(rc, inv)
	logger.Info(rc.Action.String())

	start := time.Now()
	err := withDir(filepath.Join(r.root, inv.Module), func() error {
		return r.tool.Exec(ctx, cmd)
	})
	elapsed := time.Since(start)
	if err != nil {
		logger.Error("failed", "elapsed", elapsed.Round(time.Millisecond), "err", err)
		return &ModuleBuildError{Module: inv.Module, Features: inv.Features, Action: rc.Action, Err: err}
	}

	logger.Debug("done", "elapsed", elapsed.Round(time.Millisecond))
	r.log.append(Record{Module: inv.Module, Features: inv.Features, Status: StatusExecuted, Duration: elapsed})
	return nil
}

// withDir runs fn with dir as the process working directory and restores the
// previous directory afterwards, even when fn fails or panics.
func withDir(dir string, fn func() error) (err error) {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("enter module directory: %w", err)
	}
	defer func() {
		if restoreErr := os.Chdir(prev); restoreErr != nil {
			err = errors.Join(err, fmt.Errorf("restore working directory %s: %w", prev, restoreErr))
		}
	}()
	return fn()
}
