// SPDX-License-Identifier: MPL-2.0

// Package plan declares the modules of the workspace in their hand-maintained
// dependency order and expands them into the ordered list of invocations for
// an action and algorithm selection.
//
// The order of a Catalog is authoritative. It is never derived from the
// filesystem; Catalog.Validate only proves that it respects the declared
// dependencies.
package plan
