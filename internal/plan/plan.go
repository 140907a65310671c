// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"slices"
	"strings"

	"github.com/classicalliu/cita-common/internal/selection"
)

const (
	// StatusExecute invocations are run through the build tool.
	StatusExecute Status = iota + 1
	// StatusSkip invocations are recorded without running anything.
	StatusSkip
)

// skipSets lists, per action, the groups that are recorded as skipped instead
// of executed. Lint coverage of the algorithm-dependent modules is not
// complete yet, so clippy skips everything from the hash stage onward.
var skipSets = map[Action][]Group{
	ActionLint: {GroupHash, GroupCrypto, GroupHashCrypto},
}

type (
	// Status tells the runner whether to execute an invocation.
	Status int

	// Invocation is one planned call of the build tool for a module.
	Invocation struct {
		Module   string
		Features []string
		Group    Group
		Status   Status
	}

	// Plan is the ordered list of invocations for one action and selection.
	Plan struct {
		Action      Action
		Selection   selection.Selection
		Invocations []Invocation
	}
)

// String returns "execute" or "skip".
func (s Status) String() string {
	switch s {
	case StatusExecute:
		return "execute"
	case StatusSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// SkipSet returns the groups the action records as skipped.
func SkipSet(a Action) []Group {
	return slices.Clone(skipSets[a])
}

// Skips reports whether the action skips modules of group g.
func Skips(a Action, g Group) bool {
	return slices.Contains(skipSets[a], g)
}

// String renders the invocation as "module [features]".
func (i Invocation) String() string {
	if len(i.Features) == 0 {
		return i.Module
	}
	return i.Module + " [" + strings.Join(i.Features, " ") + "]"
}

// Build expands the catalog into the plan for the action and selection.
// Transport modules produce one invocation per feature in declared order;
// algorithm groups append the selected features; groups in the action's skip
// set are marked StatusSkip.
func (c *Catalog) Build(action Action, sel selection.Selection) Plan {
	p := Plan{Action: action, Selection: sel}
	for _, m := range c.modules {
		status := StatusExecute
		if Skips(action, m.Group) {
			status = StatusSkip
		}
		for _, features := range featureSets(m, sel) {
			p.Invocations = append(p.Invocations, Invocation{
				Module:   m.Name,
				Features: features,
				Group:    m.Group,
				Status:   status,
			})
		}
	}
	return p
}

// featureSets returns one feature list per invocation of m.
func featureSets(m Module, sel selection.Selection) [][]string {
	switch m.Group {
	case GroupTransport:
		sets := make([][]string, len(m.Features))
		for i, f := range m.Features {
			sets[i] = []string{f}
		}
		return sets
	case GroupHash:
		return [][]string{{sel.Hash.Feature()}}
	case GroupCrypto:
		return [][]string{{sel.Crypto.Feature()}}
	case GroupHashCrypto:
		return [][]string{{sel.Hash.Feature(), sel.Crypto.Feature()}}
	default:
		return [][]string{nil}
	}
}

// RequiredFeatures returns every feature some selection could pass to m,
// which its manifest must therefore declare.
func RequiredFeatures(m Module) []string {
	var out []string
	if m.Group == GroupHash || m.Group == GroupHashCrypto {
		for _, h := range selection.HashAlgorithms() {
			out = append(out, h.Feature())
		}
	}
	if m.Group == GroupCrypto || m.Group == GroupHashCrypto {
		for _, c := range selection.CryptoAlgorithms() {
			out = append(out, c.Feature())
		}
	}
	if m.Group == GroupTransport {
		out = append(out, m.Features...)
	}
	return out
}

// Modules returns the set of module names the plan accounts for, whether
// executed or skipped.
func (p Plan) Modules() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Invocations))
	for _, inv := range p.Invocations {
		set[inv.Module] = struct{}{}
	}
	return set
}

// Count returns the number of invocations with the given status.
func (p Plan) Count(s Status) int {
	n := 0
	for _, inv := range p.Invocations {
		if inv.Status == s {
			n++
		}
	}
	return n
}
