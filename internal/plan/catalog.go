// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"fmt"

	"github.com/classicalliu/cita-common/internal/dag"
)

const (
	// GroupFoundation modules have no feature variation and come first.
	GroupFoundation Group = iota + 1
	// GroupTransport modules are invoked once per declared transport feature.
	GroupTransport
	// GroupCommon modules have no algorithm dependency.
	GroupCommon
	// GroupHash modules take the selected hash feature.
	GroupHash
	// GroupCrypto modules take the selected crypto feature.
	GroupCrypto
	// GroupHashCrypto modules take both the hash and the crypto feature.
	GroupHashCrypto
)

var (
	// ErrInvalidCatalog is the sentinel wrapped by CatalogError.
	ErrInvalidCatalog = errors.New("invalid module catalog")

	groupNames = map[Group]string{
		GroupFoundation: "foundation",
		GroupTransport:  "transport",
		GroupCommon:     "common",
		GroupHash:       "hash",
		GroupCrypto:     "crypto",
		GroupHashCrypto: "hash+crypto",
	}
)

type (
	// Group is the plan stage a module belongs to.
	Group int

	// Module is one independently buildable directory of the workspace.
	Module struct {
		// Name is the workspace directory name.
		Name string
		// DependsOn lists modules that must be invoked before this one.
		DependsOn []string
		// Features are the transport backends of a GroupTransport module,
		// each built in isolation.
		Features []string
		Group    Group
	}

	// Catalog is the validated, ordered list of workspace modules.
	Catalog struct {
		modules []Module
		index   map[string]int
	}

	// CatalogError reports a malformed catalog entry.
	CatalogError struct {
		Module string
		Reason string
		Err    error
	}
)

// String returns the group name.
func (g Group) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return fmt.Sprintf("group(%d)", int(g))
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	msg := fmt.Sprintf("module catalog: %s: %s", e.Module, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidCatalog, or the underlying dependency error when present.
func (e *CatalogError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidCatalog, e.Err}
	}
	return []error{ErrInvalidCatalog}
}

// NewCatalog validates modules and returns them as a Catalog in the given order.
func NewCatalog(modules ...Module) (*Catalog, error) {
	c := &Catalog{
		modules: make([]Module, len(modules)),
		index:   make(map[string]int, len(modules)),
	}
	copy(c.modules, modules)
	for i, m := range c.modules {
		if _, dup := c.index[m.Name]; dup {
			return nil, &CatalogError{Module: m.Name, Reason: "declared twice"}
		}
		c.index[m.Name] = i
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustCatalog is NewCatalog for static declarations; it panics on an invalid catalog.
func MustCatalog(modules ...Module) *Catalog {
	c, err := NewCatalog(modules...)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks that stages are contiguous and ascending, that only
// transport modules declare features (at least one each), and that the
// declared order respects every dependency.
func (c *Catalog) Validate() error {
	var prev Group
	for _, m := range c.modules {
		if m.Name == "" {
			return &CatalogError{Module: "<unnamed>", Reason: "module has no name"}
		}
		if _, ok := groupNames[m.Group]; !ok {
			return &CatalogError{Module: m.Name, Reason: fmt.Sprintf("unknown group %d", int(m.Group))}
		}
		if m.Group < prev {
			return &CatalogError{Module: m.Name, Reason: fmt.Sprintf("%s module declared after %s modules", m.Group, prev)}
		}
		prev = m.Group

		switch {
		case m.Group == GroupTransport && len(m.Features) == 0:
			return &CatalogError{Module: m.Name, Reason: "transport module declares no features"}
		case m.Group != GroupTransport && len(m.Features) > 0:
			return &CatalogError{Module: m.Name, Reason: "only transport modules may declare features"}
		}
		seen := make(map[string]bool, len(m.Features))
		for _, f := range m.Features {
			if seen[f] {
				return &CatalogError{Module: m.Name, Reason: fmt.Sprintf("feature %q declared twice", f)}
			}
			seen[f] = true
		}
	}

	g := c.Graph()
	for _, m := range c.modules {
		for _, dep := range m.DependsOn {
			if _, ok := c.index[dep]; !ok {
				return &CatalogError{Module: m.Name, Reason: fmt.Sprintf("depends on undeclared module %q", dep)}
			}
		}
	}
	if err := g.CheckOrder(c.Names()); err != nil {
		name := "<graph>"
		var orderErr *dag.OrderError
		if errors.As(err, &orderErr) {
			name = orderErr.Module
		}
		return &CatalogError{Module: name, Reason: "declared order violates dependencies", Err: err}
	}
	return nil
}

// Graph returns the dependency graph of the catalog.
func (c *Catalog) Graph() *dag.Graph {
	g := dag.New()
	for _, m := range c.modules {
		g.AddNode(m.Name)
	}
	for _, m := range c.modules {
		for _, dep := range m.DependsOn {
			g.AddEdge(dep, m.Name)
		}
	}
	return g
}

// Modules returns a copy of the catalog in declared order.
func (c *Catalog) Modules() []Module {
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// Names returns module names in declared order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.modules))
	for i, m := range c.modules {
		names[i] = m.Name
	}
	return names
}

// Lookup returns the module with the given name.
func (c *Catalog) Lookup(name string) (Module, bool) {
	i, ok := c.index[name]
	if !ok {
		return Module{}, false
	}
	return c.modules[i], true
}
