// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load configuration"},
			expected: "failed to load configuration",
		},
		{
			name:     "with resource",
			err:      &ActionableError{Operation: "build module", Resource: "util"},
			expected: "failed to build module: util",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "build module",
				Resource:  "util",
				Cause:     errors.New("exit status 101"),
			},
			expected: "failed to build module: util: exit status 101",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("sentinel")
	err := NewErrorContext().WithOperation("upload coverage").Wrap(sentinel).BuildError()

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is(err, sentinel) = false, want true")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("no such file")
	err := &ActionableError{
		Operation:   "load configuration",
		Resource:    "citaci.cue",
		Suggestions: []string{"Check the path", "Run 'citaci config show'"},
		Cause:       errors.Join(inner),
	}

	plain := err.Format(false)
	for _, want := range []string{"failed to load configuration: citaci.cue", "• Check the path", "• Run 'citaci config show'"} {
		if !strings.Contains(plain, want) {
			t.Errorf("Format(false) missing %q:\n%s", want, plain)
		}
	}
	if strings.Contains(plain, "Error chain") {
		t.Errorf("Format(false) should not include the error chain:\n%s", plain)
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") || !strings.Contains(verbose, "1. no such file") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("util").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}

	ae := NewErrorContext().
		WithOperation("run plan").
		WithResource("pubsub").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		WithIssue(ModuleBuildFailedId).
		Build()
	if ae.Operation != "run plan" || ae.Resource != "pubsub" {
		t.Errorf("Build() = %+v", ae)
	}
	if len(ae.Suggestions) != 3 || !ae.HasSuggestions() {
		t.Errorf("Suggestions = %v, want 3", ae.Suggestions)
	}
	if ae.Guidance() != moduleBuildFailedIssue {
		t.Errorf("Guidance() = %v, want moduleBuildFailedIssue", ae.Guidance())
	}
}

func TestGuidanceFor(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().WithOperation("verify workspace").WithIssue(InventoryMismatchId).BuildError()
	wrapped := errors.Join(errors.New("outer"), err)

	if got := GuidanceFor(wrapped); got == nil || got.Id() != InventoryMismatchId {
		t.Errorf("GuidanceFor() = %v, want InventoryMismatch issue", got)
	}
	if got := GuidanceFor(errors.New("plain")); got != nil {
		t.Errorf("GuidanceFor(plain) = %v, want nil", got)
	}
	noIssue := NewErrorContext().WithOperation("x").BuildError()
	if got := GuidanceFor(noIssue); got != nil {
		t.Errorf("GuidanceFor(no issue) = %v, want nil", got)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}
	cause := errors.New("boom")
	ae := WrapWithContext(cause, "scan workspace", "/src")
	if ae.Error() != "failed to scan workspace: /src: boom" {
		t.Errorf("Error() = %q", ae.Error())
	}
}
