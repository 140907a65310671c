// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/classicalliu/cita-common/internal/config"
	"github.com/classicalliu/cita-common/internal/coverage"
	"github.com/classicalliu/cita-common/internal/inventory"
	"github.com/classicalliu/cita-common/internal/issue"
	"github.com/classicalliu/cita-common/internal/manifest"
	"github.com/classicalliu/cita-common/internal/plan"
	"github.com/classicalliu/cita-common/internal/runner"
	"github.com/classicalliu/cita-common/internal/selection"
)

// fail prints err with its catalog guidance and returns the ExitError that
// makes Execute exit with status 1. s is nil when configuration failed to load.
func (a *App) fail(s *settings, err error) error {
	err = classify(err)

	verbose := s != nil && s.verbose
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))

	if guidance := issue.GuidanceFor(err); guidance != nil {
		scheme := config.ColorSchemeAuto
		if s != nil {
			scheme = s.cfg.UI.ColorScheme
		}
		if rendered, renderErr := guidance.Render(string(scheme)); renderErr == nil {
			fmt.Fprint(a.stderr, rendered)
		}
	}

	return &ExitError{Code: 1, Err: err}
}

// classify wraps domain errors in an ActionableError linked to the matching
// catalog issue. Errors that are already actionable pass through.
func classify(err error) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ctx := issue.NewErrorContext()
	var (
		mbe     *runner.ModuleBuildError
		toolErr *runner.ToolError
		mm      *inventory.MismatchError
	)
	switch {
	case errors.Is(err, selection.ErrConfig):
		ctx.WithOperation("parse arguments").
			WithIssue(issue.InvalidSelectionId).
			WithSuggestion("Run 'citaci --help' for the accepted values")
	case errors.As(err, &mbe):
		ctx.WithOperation(mbe.Action.String()).
			WithResource(mbe.Module).
			WithIssue(issue.ModuleBuildFailedId)
		if errors.As(err, &toolErr) && toolErr.ExitCode < 0 {
			ctx.WithIssue(issue.BuildToolNotFoundId)
		}
	case errors.As(err, &mm):
		ctx.WithOperation("check workspace completeness").
			WithResource(mm.Catalog).
			WithIssue(issue.InventoryMismatchId)
	case errors.Is(err, plan.ErrInvalidCatalog):
		ctx.WithOperation("validate module catalog").
			WithResource(plan.CatalogFile).
			WithIssue(issue.CatalogInvalidId)
	case errors.Is(err, manifest.ErrMissingFeature):
		ctx.WithOperation("check module manifests").
			WithIssue(issue.CatalogInvalidId).
			WithSuggestion("Declare the feature in the module's Cargo.toml [features] table")
	case errors.Is(err, coverage.ErrUpload):
		ctx.WithOperation("upload coverage").
			WithIssue(issue.CoverageUploadFailedId)
	default:
		return err
	}
	return ctx.Wrap(err).BuildError()
}

// formatErrorForDisplay uses ActionableError.Format when available.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
