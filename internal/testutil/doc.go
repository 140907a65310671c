// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include directory operations (MustChdir, MustMkdirAll,
// MustWriteFile, Getwd), throwaway cargo workspaces (NewWorkspace) and a
// logger that discards output (DiscardLogger).
package testutil
