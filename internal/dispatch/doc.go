// SPDX-License-Identifier: MPL-2.0

// Package dispatch drives one CI run from the command-line request to its
// outcome: resolve the selection, run the plan in order, check that every
// workspace module was accounted for, and optionally upload test coverage.
package dispatch
