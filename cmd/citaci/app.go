// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/classicalliu/cita-common/internal/config"
	"github.com/classicalliu/cita-common/internal/coverage"
	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/runner"

	"github.com/charmbracelet/log"
)

type (
	// ToolFactory creates the build tool for a run.
	ToolFactory func(commandLine string, dryRun bool, stdout, stderr io.Writer, logger *log.Logger) (runner.Tool, error)

	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches configuration, the module catalog and the
	// build tool through it.
	App struct {
		Config   config.Provider
		Catalog  *plan.Catalog
		NewTool  ToolFactory
		Executor coverage.Executor
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config  config.Provider
		Catalog *plan.Catalog
		NewTool ToolFactory
		// Executor runs coverage commands; nil selects child processes.
		Executor coverage.Executor
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// settings is the per-invocation state derived from flags and config.
	settings struct {
		root   string
		cfg    *config.Config
		logger  *log.Logger
		verbose bool
		dryRun  bool
	}
)

// NewApp creates an App, filling production defaults for nil dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Catalog == nil {
		deps.Catalog = plan.Workspace()
	}
	if deps.NewTool == nil {
		deps.NewTool = defaultToolFactory
	}

	return &App{
		Config:   deps.Config,
		Catalog:  deps.Catalog,
		NewTool:  deps.NewTool,
		Executor: deps.Executor,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}, nil
}

func defaultToolFactory(commandLine string, dryRun bool, stdout, stderr io.Writer, logger *log.Logger) (runner.Tool, error) {
	if dryRun {
		return runner.NewDryRunTool(commandLine, logger)
	}
	return runner.NewExecTool(commandLine, stdout, stderr)
}

// load resolves the workspace root, loads configuration and builds the logger.
func (a *App) load(ctx context.Context, flags *rootFlags) (*settings, error) {
	root, err := filepath.Abs(flags.workspace)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace %s: %w", flags.workspace, err)
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		WorkspaceDir:   root,
	})
	if err != nil {
		return nil, err
	}

	verbose := flags.verbose || cfg.UI.Verbose
	return &settings{
		root:    root,
		cfg:     cfg,
		logger:  newLogger(a.stderr, verbose),
		verbose: verbose,
		dryRun:  flags.dryRun,
	}, nil
}

// newLogger returns the CLI logger: Info by default, Debug when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "citaci",
		Level:  level,
	})
}
