// SPDX-License-Identifier: MPL-2.0

// Package runner executes planned invocations one at a time through the
// external build tool and keeps the in-memory log of what was run.
//
// Each executed invocation holds the process working directory for its
// duration: the runner changes into the module directory, runs the tool and
// restores the previous directory on every exit path. Skipped invocations go
// through the same Run function and are logged with StatusSkipped.
package runner
