// SPDX-License-Identifier: MPL-2.0

package dag

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestTopologicalSort_EmptyGraph(t *testing.T) {
	t.Parallel()
	order, err := New().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order != nil {
		t.Errorf("expected nil, got %v", order)
	}
}

func TestTopologicalSort_LinearChain(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("cita-types", "rlp")
	g.AddEdge("rlp", "util")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"cita-types", "rlp", "util"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Diamond(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("util", "hashable")
	g.AddEdge("util", "cita-crypto")
	g.AddEdge("hashable", "libproto")
	g.AddEdge("cita-crypto", "libproto")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"util", "hashable", "cita-crypto", "libproto"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected %v, got %v", expected, order)
	}
}

func TestTopologicalSort_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddNode("logger")
	g.AddEdge("rlp", "util")
	g.AddEdge("util", "rlp")

	_, err := g.TopologicalSort()
	var cycleErr *CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
	if !slices.Equal(cycleErr.Cycle, []string{"rlp", "util"}) {
		t.Errorf("Cycle = %v, want [rlp util]", cycleErr.Cycle)
	}
	if !strings.Contains(cycleErr.Error(), "rlp -> util") {
		t.Errorf("message %q should list the cycle", cycleErr.Error())
	}
}

func TestTopologicalSort_DuplicateEdges(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("rlp", "util")
	g.AddEdge("rlp", "util")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{"rlp", "util"}) {
		t.Errorf("expected [rlp util], got %v", order)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
}

func TestCheckOrder(t *testing.T) {
	t.Parallel()

	newGraph := func() *Graph {
		g := New()
		g.AddNode("logger")
		g.AddEdge("cita-types", "rlp")
		g.AddEdge("rlp", "util")
		g.AddEdge("logger", "pubsub")
		return g
	}

	tests := []struct {
		name    string
		order   []string
		wantErr error
	}{
		{
			name:  "declared order",
			order: []string{"logger", "cita-types", "rlp", "pubsub", "util"},
		},
		{
			name:  "repeated module from feature expansion",
			order: []string{"logger", "pubsub", "pubsub", "pubsub", "cita-types", "rlp", "util"},
		},
		{
			name:  "subset of graph",
			order: []string{"cita-types", "rlp"},
		},
		{
			name:    "dependent before dependency",
			order:   []string{"logger", "rlp", "cita-types", "pubsub", "util"},
			wantErr: &OrderError{Module: "rlp", Dependency: "cita-types"},
		},
		{
			name:    "dependency missing from order",
			order:   []string{"pubsub"},
			wantErr: &OrderError{Module: "pubsub", Dependency: "logger"},
		},
		{
			name:    "unknown module",
			order:   []string{"logger", "snappy"},
			wantErr: &UnknownModuleError{Module: "snappy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := newGraph().CheckOrder(tt.order)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("CheckOrder(%v) = %v, want nil", tt.order, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("CheckOrder(%v) = nil, want %v", tt.order, tt.wantErr)
			}
			if err.Error() != tt.wantErr.Error() {
				t.Errorf("CheckOrder(%v) = %q, want %q", tt.order, err.Error(), tt.wantErr.Error())
			}
		})
	}
}

func TestCheckOrder_Cycle(t *testing.T) {
	t.Parallel()
	g := New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	var cycleErr *CycleError
	if err := g.CheckOrder([]string{"a", "b"}); !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %v", err)
	}
}
