// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"tool"}, "tool"},
		{[]string{"tool", "lint_args", "0"}, "tool.lint_args[0]"},
		{[]string{"coverage", "upload_attempts"}, "coverage.upload_attempts"},
		{[]string{"0"}, "0"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "citaci.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	plain := FormatError(errors.New("boom"), "citaci.cue")
	if plain.Error() != "citaci.cue: boom" {
		t.Errorf("plain error = %q", plain.Error())
	}

	ctx := cuecontext.New()
	v := ctx.CompileString(`coverage: upload_attempts: int & >=1
coverage: upload_attempts: 0`)
	err := FormatError(v.Validate(), "citaci.cue")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !strings.HasPrefix(err.Error(), "citaci.cue: ") || !strings.Contains(err.Error(), "coverage.upload_attempts") {
		t.Errorf("formatted error = %q", err.Error())
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 10), 10, "a.cue"); err != nil {
		t.Errorf("CheckFileSize at limit = %v", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "a.cue"); err == nil {
		t.Error("CheckFileSize over limit should fail")
	}
}
