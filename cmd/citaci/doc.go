// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the citaci command line.
//
// The root command runs one CI action over the workspace
// (citaci <action> [hash] [crypto] [upload]). Subcommands print the plan,
// statically verify the workspace against the module catalog, and show the
// effective configuration.
package cmd
