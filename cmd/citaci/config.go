// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/classicalliu/cita-common/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `citaci config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect citaci configuration",
		Long: `Inspect citaci configuration.

Configuration is read from the first file found:
  - the --config flag
  - <workspace>/citaci.cue
  - $XDG_CONFIG_HOME/citaci/config.cue

CITACI_* environment variables override file values
(for example CITACI_TOOL_COMMAND="cargo +nightly").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlags) error {
	root, err := filepath.Abs(flags.workspace)
	if err != nil {
		return err
	}

	opts := config.LoadOptions{ConfigFilePath: flags.configPath, WorkspaceDir: root}
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return app.fail(nil, err)
	}

	source := "(defaults)"
	if path, err := config.ResolvePath(opts); err == nil && path != "" {
		source = path
	}
	fmt.Fprintf(app.stdout, "// source: %s\n", source)
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}
