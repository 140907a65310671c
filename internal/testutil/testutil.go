// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// MustChdir changes the current working directory to dir.
// It returns a cleanup function that restores the original directory.
// The test fails immediately if the directory change fails.
func MustChdir(t testing.TB, dir string) func() {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	return func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	}
}

// Getwd returns the current working directory with symlinks resolved, so it
// can be compared against t.TempDir() paths on macOS.
func Getwd(t testing.TB) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	return Resolve(t, wd)
}

// Resolve returns path with symlinks evaluated.
func Resolve(t testing.TB, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve %s: %v", path, err)
	}
	return resolved
}

// MustMkdirAll creates a directory and all parents.
// The test fails immediately if the operation fails.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
}

// MustWriteFile writes content to path, creating parent directories.
// The test fails immediately if the operation fails.
func MustWriteFile(t testing.TB, path, content string, perm os.FileMode) {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// NewWorkspace creates a temporary workspace with one directory per module.
// Each module gets a Cargo.toml; features listed after a colon
// ("pubsub:rabbitmq,zeromq") are declared in its [features] table.
func NewWorkspace(t testing.TB, modules ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, spec := range modules {
		name, features, _ := strings.Cut(spec, ":")
		var b strings.Builder
		fmt.Fprintf(&b, "[package]\nname = %q\nversion = \"0.1.0\"\n", name)
		if features != "" {
			b.WriteString("\n[features]\ndefault = []\n")
			for _, f := range strings.Split(features, ",") {
				fmt.Fprintf(&b, "%s = []\n", f)
			}
		}
		MustWriteFile(t, filepath.Join(root, name, "Cargo.toml"), b.String(), 0o644)
	}
	return root
}

// DiscardLogger returns a logger that drops all output.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
