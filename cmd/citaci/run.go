// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/classicalliu/cita-common/internal/coverage"
	"github.com/classicalliu/cita-common/internal/dispatch"
	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/runner"
	"github.com/classicalliu/cita-common/internal/selection"

	"github.com/charmbracelet/log"
)

// uploadBackoff is the delay before the second upload attempt; it doubles after each retry.
const uploadBackoff = 2 * time.Second

// runCI executes "citaci <action> [hash] [crypto] [upload]".
func runCI(ctx context.Context, app *App, flags *rootFlags, args []string) error {
	s, err := app.load(ctx, flags)
	if err != nil {
		return app.fail(nil, err)
	}

	req, err := parseRunArgs(args)
	if err != nil {
		return app.fail(s, err)
	}

	d, err := app.newDispatcher(s)
	if err != nil {
		return app.fail(s, err)
	}

	out := d.Dispatch(ctx, req)
	app.printSummary(out)
	if out.Err != nil {
		return app.fail(s, out.Err)
	}
	return nil
}

// parseRunArgs maps positional arguments onto a dispatch request.
// Empty hash and crypto arguments select the defaults.
func parseRunArgs(args []string) (dispatch.Request, error) {
	var req dispatch.Request
	if len(args) > 0 {
		req.Action = args[0]
	}
	if len(args) > 1 {
		req.Hash = args[1]
	}
	if len(args) > 2 {
		req.Crypto = args[2]
	}
	if len(args) > 3 {
		upload, err := strconv.ParseBool(strings.TrimSpace(args[3]))
		if err != nil {
			return dispatch.Request{}, &selection.ConfigError{Option: "upload", Value: args[3], Err: err}
		}
		req.Upload = upload
	}
	return req, nil
}

// newDispatcher wires runner, tool and coverage uploader from configuration.
func (a *App) newDispatcher(s *settings) (*dispatch.Dispatcher, error) {
	cfg := s.cfg

	tool, err := a.NewTool(cfg.Tool.Command.String(), s.dryRun, a.stdout, a.stderr, s.logger)
	if err != nil {
		return nil, fmt.Errorf("tool.command: %w", err)
	}

	subcommands := make(map[plan.Action][]string, 3)
	for action, line := range map[plan.Action]string{
		plan.ActionBuild: cfg.Tool.Subcommands.Build.String(),
		plan.ActionTest:  cfg.Tool.Subcommands.Test.String(),
		plan.ActionLint:  cfg.Tool.Subcommands.Lint.String(),
	} {
		words, err := runner.SplitCommandLine(line)
		if err != nil {
			return nil, fmt.Errorf("tool.subcommands.%s: %w", action, err)
		}
		subcommands[action] = words
	}
	extraArgs := map[plan.Action][]string{plan.ActionLint: cfg.Tool.LintArgs}

	var warningsEnv []string
	if cfg.Tool.WarningsEnv != "" {
		warningsEnv = []string{string(cfg.Tool.WarningsEnv)}
	}

	executor := a.Executor
	if executor == nil && s.dryRun {
		executor = &dryRunExecutor{logger: s.logger}
	}
	uploader := coverage.New(coverage.Options{
		Root:           s.root,
		ArtifactDir:    cfg.Coverage.ArtifactDir,
		OutputDir:      cfg.Coverage.OutputDir,
		Instrument:     cfg.Coverage.Instrument.String(),
		Upload:         cfg.Coverage.Upload.String(),
		EnvFile:        cfg.Coverage.EnvFile,
		UploadAttempts: cfg.Coverage.UploadAttempts,
		UploadBackoff:  uploadBackoff,
		Executor:       executor,
		Logger:         s.logger,
	})

	return dispatch.New(dispatch.Options{
		Catalog: a.Catalog,
		Root:    s.root,
		Exclude: cfg.Workspace.Exclude,
		NewRunner: func() *runner.Runner {
			return runner.New(runner.Options{
				Root:        s.root,
				Tool:        tool,
				Subcommands: subcommands,
				ExtraArgs:   extraArgs,
				Logger:      s.logger,
			})
		},
		Uploader:    uploader,
		WarningsEnv: warningsEnv,
		Logger:      s.logger,
	}), nil
}

// printSummary writes the per-run result lines to stdout.
func (a *App) printSummary(out dispatch.Outcome) {
	executed, skipped := 0, 0
	var total time.Duration
	for _, r := range out.Records {
		switch r.Status {
		case runner.StatusExecuted:
			executed++
			total += r.Duration
		case runner.StatusSkipped:
			skipped++
		}
	}

	counts := fmt.Sprintf("%d executed, %d skipped in %s", executed, skipped, total.Round(time.Millisecond))
	if out.State == dispatch.StateDone {
		fmt.Fprintf(a.stdout, "%s %s %s\n", checkMark, SuccessStyle.Render(out.Plan.Action.String()+" passed"), SubtitleStyle.Render(counts))
	} else if len(out.Plan.Invocations) > 0 {
		fmt.Fprintf(a.stdout, "%s %s %s\n", crossMark, ErrorStyle.Render(out.Plan.Action.String()+" failed"), SubtitleStyle.Render(counts))
	}

	if out.Upload != nil {
		if out.Upload.Err != nil {
			fmt.Fprintf(a.stdout, "%s %s\n", WarningStyle.Render("!"), WarningStyle.Render("coverage not uploaded: "+out.Upload.Err.Error()))
		} else {
			fmt.Fprintf(a.stdout, "%s coverage uploaded (%d/%d artifacts instrumented)\n",
				checkMark, out.Upload.Instrumented, len(out.Upload.Artifacts))
		}
	}
	fmt.Fprintln(a.stdout, VerboseStyle.Render("run "+out.RunID))
}

// dryRunExecutor logs coverage commands instead of running them.
type dryRunExecutor struct {
	logger *log.Logger
}

func (e *dryRunExecutor) Run(_ context.Context, dir string, argv, env []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}
	e.logger.Info("dry run", "dir", dir, "cmd", runner.RenderCommandLine(argv), "env", len(env))
	return nil
}
