// SPDX-License-Identifier: MPL-2.0

// Package coverage collects coverage for the test binaries left in the build
// output directory and hands the result to an upload command.
//
// Everything here is best-effort: a failing artifact is reported and skipped,
// and a failed upload is returned in the Report rather than failing the run.
package coverage
