// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/classicalliu/cita-common/internal/inventory"
	"github.com/classicalliu/cita-common/internal/manifest"
	"github.com/classicalliu/cita-common/internal/plan"

	"github.com/spf13/cobra"
)

// verifyCheck is one named static check of the workspace.
type verifyCheck struct {
	name string
	run  func() error
}

func newVerifyCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the module catalog against the workspace without building",
		Long: `Check the module catalog against the workspace without building.

  - the catalog lists every module after its dependencies
  - every catalog module has a directory with a Cargo.toml
  - every feature a plan can select is declared in that Cargo.toml
  - every workspace directory is listed in the catalog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), app, flags)
		},
	}
}

func runVerify(ctx context.Context, app *App, flags *rootFlags) error {
	s, err := app.load(ctx, flags)
	if err != nil {
		return app.fail(nil, err)
	}

	checks := []verifyCheck{
		{name: "catalog order", run: app.Catalog.Validate},
	}
	for _, m := range app.Catalog.Modules() {
		checks = append(checks, verifyCheck{
			name: "manifest " + m.Name,
			run:  func() error { return checkManifest(s.root, m) },
		})
	}
	checks = append(checks, verifyCheck{
		name: "workspace completeness",
		run: func() error {
			inv, err := inventory.Scan(s.root, s.cfg.Workspace.Exclude)
			if err != nil {
				return err
			}
			return inventory.Reconcile(inv, inventory.Of(app.Catalog.Names()...), plan.CatalogFile)
		},
	})

	var errs []error
	for _, c := range checks {
		if err := c.run(); err != nil {
			fmt.Fprintf(app.stdout, "%s %s: %s\n", crossMark, c.name, ErrorStyle.Render(err.Error()))
			errs = append(errs, err)
			continue
		}
		s.logger.Debug("check passed", "check", c.name)
		if s.verbose {
			fmt.Fprintf(app.stdout, "%s %s\n", checkMark, c.name)
		}
	}

	if len(errs) > 0 {
		fmt.Fprintf(app.stdout, "%s %d of %d checks failed\n", crossMark, len(errs), len(checks))
		return app.fail(s, errors.Join(errs...))
	}
	fmt.Fprintf(app.stdout, "%s %s\n", checkMark, SuccessStyle.Render(fmt.Sprintf("all %d checks passed", len(checks))))
	return nil
}

// checkManifest loads the module's Cargo.toml and requires every feature
// a plan may pass to it.
func checkManifest(root string, m plan.Module) error {
	mf, err := manifest.Load(filepath.Join(root, m.Name))
	if err != nil {
		return err
	}
	return mf.Require(m.Name, plan.RequiredFeatures(m)...)
}
