// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/runner"
	"github.com/classicalliu/cita-common/internal/selection"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// planRow is one invocation as printed by 'citaci plan'.
type planRow struct {
	step    int
	inv     plan.Invocation
	command string
}

func newPlanCommand(app *App, flags *rootFlags) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:   "plan <action> [hash] [crypto]",
		Short: "Print the ordered invocations of an action without running them",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPlan(cmd.Context(), app, flags, args, markdown)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "render the plan as markdown")

	return cmd
}

func showPlan(ctx context.Context, app *App, flags *rootFlags, args []string, markdown bool) error {
	s, err := app.load(ctx, flags)
	if err != nil {
		return app.fail(nil, err)
	}

	req, err := parseRunArgs(args)
	if err != nil {
		return app.fail(s, err)
	}
	action, err := plan.ParseAction(req.Action)
	if err != nil {
		return app.fail(s, err)
	}
	sel, err := selection.Resolve(req.Hash, req.Crypto)
	if err != nil {
		return app.fail(s, err)
	}

	p := app.Catalog.Build(action, sel)
	rows, err := planRows(s, p)
	if err != nil {
		return app.fail(s, err)
	}

	if markdown {
		out, err := glamour.Render(planMarkdown(p, rows), string(s.cfg.UI.ColorScheme))
		if err != nil {
			return fmt.Errorf("render plan: %w", err)
		}
		fmt.Fprint(app.stdout, out)
		return nil
	}

	fmt.Fprintln(app.stdout, TitleStyle.Render(fmt.Sprintf("%s plan", action))+" "+
		SubtitleStyle.Render(fmt.Sprintf("(%s, %d invocations, %d skipped)", sel, len(p.Invocations), p.Count(plan.StatusSkip))))
	fmt.Fprintln(app.stdout, planTable(rows))
	return nil
}

// planRows renders the full tool command line of every invocation.
func planRows(s *settings, p plan.Plan) ([]planRow, error) {
	toolArgv, err := runner.SplitCommandLine(s.cfg.Tool.Command.String())
	if err != nil {
		return nil, fmt.Errorf("tool.command: %w", err)
	}
	sub, err := runner.SplitCommandLine(subcommandLine(s, p.Action))
	if err != nil {
		return nil, fmt.Errorf("tool.subcommands.%s: %w", p.Action, err)
	}

	rn := runner.New(runner.Options{
		Root:        s.root,
		Subcommands: map[plan.Action][]string{p.Action: sub},
		ExtraArgs:   map[plan.Action][]string{plan.ActionLint: s.cfg.Tool.LintArgs},
		Logger:      s.logger,
	})
	rc := runner.Context{Action: p.Action, Selection: p.Selection}
	if p.Action.Strict() && s.cfg.Tool.WarningsEnv != "" {
		rc.Env = []string{string(s.cfg.Tool.WarningsEnv)}
	}

	rows := make([]planRow, len(p.Invocations))
	for i, inv := range p.Invocations {
		c := rn.Command(rc, inv)
		line := runner.RenderCommandLine(append(append([]string(nil), toolArgv...), c.Args...))
		for j := len(c.Env) - 1; j >= 0; j-- {
			line = renderAssignment(c.Env[j]) + " " + line
		}
		rows[i] = planRow{step: i + 1, inv: inv, command: line}
	}
	return rows, nil
}

// renderAssignment quotes the value of KEY=VALUE for display.
func renderAssignment(kv string) string {
	key, value, _ := strings.Cut(kv, "=")
	return key + "=" + runner.RenderCommandLine([]string{value})
}

func subcommandLine(s *settings, a plan.Action) string {
	switch a {
	case plan.ActionBuild:
		return s.cfg.Tool.Subcommands.Build.String()
	case plan.ActionTest:
		return s.cfg.Tool.Subcommands.Test.String()
	default:
		return s.cfg.Tool.Subcommands.Lint.String()
	}
}

func planTable(rows []planRow) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("#", "MODULE", "FEATURES", "STATUS", "COMMAND").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return planHeaderStyle
			case rows[row].inv.Status == plan.StatusSkip:
				return planSkipStyle
			default:
				return planCellStyle
			}
		})
	for _, r := range rows {
		command := r.command
		if r.inv.Status == plan.StatusSkip {
			command = "-"
		}
		t.Row(strconv.Itoa(r.step), r.inv.Module, strings.Join(r.inv.Features, " "), r.inv.Status.String(), command)
	}
	return t.Render()
}

func planMarkdown(p plan.Plan, rows []planRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s plan\n\n", p.Action)
	fmt.Fprintf(&b, "Selection: `%s`, %d invocations, %d skipped.\n\n", p.Selection, len(p.Invocations), p.Count(plan.StatusSkip))
	b.WriteString("| # | module | features | status | command |\n")
	b.WriteString("|---|--------|----------|--------|---------|\n")
	for _, r := range rows {
		command := "`" + r.command + "`"
		if r.inv.Status == plan.StatusSkip {
			command = "-"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", r.step, r.inv.Module, strings.Join(r.inv.Features, " "), r.inv.Status, command)
	}
	return b.String()
}
