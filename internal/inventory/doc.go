// SPDX-License-Identifier: MPL-2.0

// Package inventory lists the modules present in the workspace and checks
// that a run accounted for every one of them. A module on disk with no
// record means it was added to the workspace without being declared in the
// orchestration catalog.
package inventory
