// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/classicalliu/cita-common/internal/dag"
	"github.com/classicalliu/cita-common/internal/selection"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(
		Module{Name: "types", Group: GroupFoundation},
		Module{Name: "pubsub", DependsOn: []string{"types"}, Features: []string{"f1", "f2", "f3"}, Group: GroupTransport},
		Module{Name: "util", DependsOn: []string{"types"}, Group: GroupCommon},
		Module{Name: "hashable", DependsOn: []string{"util"}, Group: GroupHash},
		Module{Name: "crypto", Group: GroupCrypto},
		Module{Name: "proto", DependsOn: []string{"hashable", "crypto"}, Group: GroupHashCrypto},
	)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token string
		want  Action
	}{
		{"build", ActionBuild},
		{"test", ActionTest},
		{"clippy", ActionLint},
		{"lint", ActionLint},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAction(tt.token)
			if err != nil {
				t.Fatalf("ParseAction(%q) error: %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseAction(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseAction_Unknown(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", "deploy", "Build", "tset"} {
		_, err := ParseAction(token)
		if !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseAction(%q) error = %v, want ErrUnknownAction", token, err)
		}
		if !errors.Is(err, selection.ErrConfig) {
			t.Errorf("ParseAction(%q) error should be a ConfigError", token)
		}
	}
}

func TestAction_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action     Action
		subcommand string
		token      string
		strict     bool
	}{
		{ActionBuild, "build", "build", true},
		{ActionTest, "test", "test", true},
		{ActionLint, "clippy", "clippy", false},
	}
	for _, tt := range tests {
		if got := tt.action.Subcommand(); got != tt.subcommand {
			t.Errorf("%v.Subcommand() = %q, want %q", tt.action, got, tt.subcommand)
		}
		if got := tt.action.Token(); got != tt.token {
			t.Errorf("%v.Token() = %q, want %q", tt.action, got, tt.token)
		}
		if got := tt.action.Strict(); got != tt.strict {
			t.Errorf("%v.Strict() = %v, want %v", tt.action, got, tt.strict)
		}
	}
	if Action(0).IsValid() {
		t.Error("zero Action should be invalid")
	}
}

func TestBuild_FeatureExpansion(t *testing.T) {
	t.Parallel()

	p := testCatalog(t).Build(ActionTest, selection.Default())

	var got [][]string
	for _, inv := range p.Invocations {
		if inv.Module == "pubsub" {
			got = append(got, inv.Features)
		}
	}
	want := [][]string{{"f1"}, {"f2"}, {"f3"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("pubsub invocations = %v, want %v", got, want)
	}
}

func TestBuild_TestPlan(t *testing.T) {
	t.Parallel()

	sel := selection.Selection{Hash: selection.HashSM3, Crypto: selection.CryptoSM2}
	p := testCatalog(t).Build(ActionTest, sel)

	want := []Invocation{
		{Module: "types", Group: GroupFoundation, Status: StatusExecute},
		{Module: "pubsub", Features: []string{"f1"}, Group: GroupTransport, Status: StatusExecute},
		{Module: "pubsub", Features: []string{"f2"}, Group: GroupTransport, Status: StatusExecute},
		{Module: "pubsub", Features: []string{"f3"}, Group: GroupTransport, Status: StatusExecute},
		{Module: "util", Group: GroupCommon, Status: StatusExecute},
		{Module: "hashable", Features: []string{"sm3hash"}, Group: GroupHash, Status: StatusExecute},
		{Module: "crypto", Features: []string{"sm2"}, Group: GroupCrypto, Status: StatusExecute},
		{Module: "proto", Features: []string{"sm3hash", "sm2"}, Group: GroupHashCrypto, Status: StatusExecute},
	}
	if !reflect.DeepEqual(p.Invocations, want) {
		t.Errorf("Build(test) =\n%v\nwant\n%v", p.Invocations, want)
	}
	if p.Action != ActionTest || p.Selection != sel {
		t.Errorf("plan header = %v %v, want %v %v", p.Action, p.Selection, ActionTest, sel)
	}
}

func TestBuild_LintSkipsAlgorithmGroups(t *testing.T) {
	t.Parallel()

	c := testCatalog(t)
	lint := c.Build(ActionLint, selection.Default())
	build := c.Build(ActionBuild, selection.Default())

	if len(lint.Invocations) != len(build.Invocations) {
		t.Fatalf("lint plan has %d invocations, build plan %d", len(lint.Invocations), len(build.Invocations))
	}
	for i, inv := range lint.Invocations {
		if inv.Module != build.Invocations[i].Module {
			t.Errorf("invocation %d: lint module %q, build module %q", i, inv.Module, build.Invocations[i].Module)
		}
		wantSkip := inv.Group >= GroupHash
		if gotSkip := inv.Status == StatusSkip; gotSkip != wantSkip {
			t.Errorf("lint %s status = %v, want skip=%v", inv, inv.Status, wantSkip)
		}
	}
	if n := build.Count(StatusSkip); n != 0 {
		t.Errorf("build plan has %d skipped invocations, want 0", n)
	}
	if !reflect.DeepEqual(lint.Modules(), build.Modules()) {
		t.Error("lint and build plans should account for the same modules")
	}
}

func TestSkipSet(t *testing.T) {
	t.Parallel()

	if got := SkipSet(ActionLint); !slices.Equal(got, []Group{GroupHash, GroupCrypto, GroupHashCrypto}) {
		t.Errorf("SkipSet(lint) = %v", got)
	}
	for _, a := range []Action{ActionBuild, ActionTest} {
		if got := SkipSet(a); len(got) != 0 {
			t.Errorf("SkipSet(%v) = %v, want empty", a, got)
		}
	}
}

func TestBuild_Idempotent(t *testing.T) {
	t.Parallel()

	c := Workspace()
	for _, a := range Actions() {
		first := c.Build(a, selection.Default())
		second := c.Build(a, selection.Default())
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Build(%v) is not deterministic", a)
		}
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modules []Module
	}{
		{
			name:    "duplicate",
			modules: []Module{{Name: "a", Group: GroupFoundation}, {Name: "a", Group: GroupCommon}},
		},
		{
			name:    "transport without features",
			modules: []Module{{Name: "pubsub", Group: GroupTransport}},
		},
		{
			name:    "features outside transport",
			modules: []Module{{Name: "util", Features: []string{"x"}, Group: GroupCommon}},
		},
		{
			name:    "duplicate feature",
			modules: []Module{{Name: "pubsub", Features: []string{"x", "x"}, Group: GroupTransport}},
		},
		{
			name:    "stage out of order",
			modules: []Module{{Name: "util", Group: GroupCommon}, {Name: "types", Group: GroupFoundation}},
		},
		{
			name:    "undeclared dependency",
			modules: []Module{{Name: "util", DependsOn: []string{"ghost"}, Group: GroupCommon}},
		},
		{
			name: "dependency declared later",
			modules: []Module{
				{Name: "util", DependsOn: []string{"db"}, Group: GroupCommon},
				{Name: "db", Group: GroupCommon},
			},
		},
		{
			name:    "unknown group",
			modules: []Module{{Name: "util"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCatalog(tt.modules...)
			if !errors.Is(err, ErrInvalidCatalog) {
				t.Fatalf("NewCatalog error = %v, want ErrInvalidCatalog", err)
			}
		})
	}
}

func TestNewCatalog_OrderViolationWrapsDagError(t *testing.T) {
	t.Parallel()

	_, err := NewCatalog(
		Module{Name: "util", DependsOn: []string{"db"}, Group: GroupCommon},
		Module{Name: "db", Group: GroupCommon},
	)
	var orderErr *dag.OrderError
	if !errors.As(err, &orderErr) {
		t.Fatalf("error should wrap *dag.OrderError, got %v", err)
	}
	if orderErr.Module != "util" || orderErr.Dependency != "db" {
		t.Errorf("OrderError = %+v", orderErr)
	}
}

func TestWorkspace(t *testing.T) {
	t.Parallel()

	c := Workspace()
	if err := c.Validate(); err != nil {
		t.Fatalf("workspace catalog invalid: %v", err)
	}
	pubsub, ok := c.Lookup("pubsub")
	if !ok {
		t.Fatal("workspace should declare pubsub")
	}
	if len(pubsub.Features) < 2 {
		t.Errorf("pubsub features = %v, want several transports", pubsub.Features)
	}

	p := c.Build(ActionTest, selection.Default())
	if got, want := len(p.Invocations), len(c.Names())+len(pubsub.Features)-1; got != want {
		t.Errorf("test plan has %d invocations, want %d", got, want)
	}
	if got := len(p.Modules()); got != len(c.Names()) {
		t.Errorf("test plan accounts for %d modules, want %d", got, len(c.Names()))
	}
}

func TestRequiredFeatures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		module Module
		want   []string
	}{
		{Module{Name: "types", Group: GroupFoundation}, nil},
		{Module{Name: "pubsub", Features: []string{"kafka", "zeromq"}, Group: GroupTransport}, []string{"kafka", "zeromq"}},
		{Module{Name: "hashable", Group: GroupHash}, []string{"sha3hash", "blake2bhash", "sm3hash"}},
		{Module{Name: "crypto", Group: GroupCrypto}, []string{"secp256k1", "ed25519", "sm2"}},
		{
			Module{Name: "proto", Group: GroupHashCrypto},
			[]string{"sha3hash", "blake2bhash", "sm3hash", "secp256k1", "ed25519", "sm2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.module.Name, func(t *testing.T) {
			t.Parallel()
			if got := RequiredFeatures(tt.module); !slices.Equal(got, tt.want) {
				t.Errorf("RequiredFeatures(%s) = %v, want %v", tt.module.Name, got, tt.want)
			}
		})
	}
}
