// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"slices"
	"testing"
)

func TestSplitCommandLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want []string
	}{
		{"cargo", []string{"cargo"}},
		{"cargo +nightly", []string{"cargo", "+nightly"}},
		{`kcov "--exclude-pattern=/.cargo,/usr/lib" --verify`, []string{"kcov", "--exclude-pattern=/.cargo,/usr/lib", "--verify"}},
		{"  codecov   --dir 'target/cov dir'  ", []string{"codecov", "--dir", "target/cov dir"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, err := SplitCommandLine(tt.line)
			if err != nil {
				t.Fatalf("SplitCommandLine(%q) error: %v", tt.line, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("SplitCommandLine(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestSplitCommandLine_Errors(t *testing.T) {
	t.Parallel()

	if _, err := SplitCommandLine("   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("blank line error = %v, want ErrEmptyCommand", err)
	}
	if _, err := SplitCommandLine(`cargo "unterminated`); err == nil {
		t.Error("unterminated quote should fail to parse")
	}
}

func TestRenderCommandLine(t *testing.T) {
	t.Parallel()

	got := RenderCommandLine([]string{"cargo", "test", "--features", "sha3hash secp256k1"})
	want := "cargo test --features 'sha3hash secp256k1'"
	if got != want {
		t.Errorf("RenderCommandLine() = %q, want %q", got, want)
	}
}

func TestToolError_Message(t *testing.T) {
	t.Parallel()

	err := &ToolError{Argv: []string{"cargo", "build"}, ExitCode: 101}
	if got, want := err.Error(), "cargo build: exit status 101"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
