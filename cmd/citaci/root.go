// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	workspace  string
	verbose    bool
	dryRun     bool
}

// NewRootCommand builds the citaci command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "citaci <action> [hash] [crypto] [upload]",
		Short: "Build, test and lint every module of the workspace in dependency order",
		Long: TitleStyle.Render("citaci") + SubtitleStyle.Render(" - CI orchestration for the cita-common workspace") + `

Runs one action over every workspace module in catalog order, expanding
backend features, then checks that no module directory was left out.

` + SubtitleStyle.Render("Arguments:") + `
  action   build | test | clippy
  hash     sha3hash | blake2bhash | sm3hash     (default sha3hash)
  crypto   secp256k1 | ed25519 | sm2           (default secp256k1)
  upload   true | false; upload coverage after a successful test run

` + SubtitleStyle.Render("Examples:") + `
  citaci test                        Test with the default algorithms
  citaci build sm3hash sm2           Build with the SM algorithms
  citaci test sha3hash ed25519 true  Test and upload coverage
  citaci plan clippy                 Show what clippy would run
  citaci verify                      Check catalog, manifests and directories`,
		Args:          cobra.MaximumNArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCI(cmd.Context(), app, flags, args)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default is <workspace>/citaci.cue, then $XDG_CONFIG_HOME/citaci/config.cue)")
	pf.StringVarP(&flags.workspace, "workspace", "w", ".", "workspace root containing the module directories")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "log build tool commands instead of running them")

	rootCmd.AddCommand(newPlanCommand(app, flags))
	rootCmd.AddCommand(newVerifyCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's status. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(errorHandler),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// errorHandler leaves ExitErrors alone because their diagnostics were
// already printed by the command; everything else gets fang's styling.
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
